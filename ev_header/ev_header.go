package ev_header

// --------------------- json event field names -------------------------- //

const (
	// event innate attributions
	Event_Name           = "Event-Name"
	Event_Subclass       = "Event-Subclass"
	Event_Date_Timestamp = "Event-Date-Timestamp"
	Core_Uuid            = "Core-UUID"
	// leg uuid
	Unique_ID         = "Unique-ID"
	Channel_Call_UUID = "Channel-Call-UUID"
	Caller_Unique_ID  = "Caller-Unique-ID"
	// direction and state
	Caller_Direction = "Caller-Direction"
	Call_Direction   = "Call-Direction"
	Answer_State     = "Answer-State"
	// caller
	Caller_ID_Number          = "Caller-Caller-ID-Number"
	Caller_Orig_ID_Number     = "Caller-Orig-Caller-ID-Number"
	Callee_Destination_Number = "Caller-Destination-Number"
	// hangup cause
	Hangup_Cause = "Hangup-Cause"
	// conference maintenance
	Action                = "Action"
	Member_ID             = "Member-ID"
	Conference_Name       = "Conference-Name"
	Conference_Unique_ID  = "Conference-Unique-ID"
	Conference_Size       = "Conference-Size"
	Conference_Profile    = "Conference-Profile-Name"
	Conference_Maint      = "conference::maintenance"
	Conference_Create     = "conference-create"
	Conference_Destroy    = "conference-destroy"
	Conference_Add_Member = "add-member"
	Conference_Del_Member = "del-member"
	// sip variables
	Sip_Req_Uri = "variable_sip_req_uri"
	// custom sip headers echoed as channel variables: variable_sip_h_X-Foo
	Sip_Custom_Header_Prefix = "variable_sip_h_"
)

// event names this module subscribes to or classifies
const (
	CHANNEL_CREATE  = "CHANNEL_CREATE"
	CHANNEL_ANSWER  = "CHANNEL_ANSWER"
	CHANNEL_HANGUP  = "CHANNEL_HANGUP"
	CHANNEL_DESTROY = "CHANNEL_DESTROY"
	CUSTOM          = "CUSTOM"
	ALL             = "ALL"
)
