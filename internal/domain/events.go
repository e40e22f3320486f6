package domain

// Inbound events, received from clients. The names are part of the wire
// contract with the web client and must not change.
const (
	EvtSetup              = "setup"
	EvtRequestOnlineUsers = "request_online_users"
	EvtJoinChat           = "join_chat"
	EvtJoinProject        = "join_project"
	EvtLeaveProject       = "leave_project"
	EvtJoinUser           = "join_user"
	EvtTyping             = "typing"
	EvtStopTyping         = "stop_typing"
	EvtNewMessage         = "new_message"
	EvtTaskAction         = "task_action"

	EvtJoinRoom        = "join_room"
	EvtSendingSignal   = "sending_signal"
	EvtReturningSignal = "returning_signal"
	EvtRingRoom        = "ring_room"
	EvtEndCall         = "end_call"
	EvtCallUser        = "call_user"
	EvtAnswerCall      = "answer_call"
	EvtSendSignal      = "send_signal"
)

// Outbound events, emitted to clients.
const (
	EvtConnected            = "connected"
	EvtGetOnlineUsers       = "get_online_users"
	EvtUserStatus           = "user_status"
	EvtMessageReceived      = "message_received"
	EvtNewChatReceived      = "new_chat_received"
	EvtChatDeleted          = "chat_deleted"
	EvtNotificationReceived = "notification_received"
	EvtTaskCreated          = "task_created"
	EvtTaskUpdated          = "task_updated"
	EvtTaskDeleted          = "task_deleted"
	EvtProjectUpdated       = "project_updated"
	EvtTaskActionReceived   = "task_action_received"

	EvtAllUsers              = "all_users"
	EvtUserJoined            = "user_joined"
	EvtUserJoinedSignal      = "user_joined_signal"
	EvtReceivingReturnSignal = "receiving_returned_signal"
	EvtIncomingCallNotify    = "incoming_call_notification"
	EvtCallEnded             = "call_ended"
	EvtCallIncoming          = "call_incoming"
	EvtCallAccepted          = "call_accepted"
	EvtSignalReceived        = "signal_received"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// UserStatus is the payload of the global presence transition broadcast.
type UserStatus struct {
	UserID UserID `json:"userId"`
	Status string `json:"status"`
}
