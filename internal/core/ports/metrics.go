package ports

// Actions reported to MetricsRecorder.
const (
	ActionSignup      = "signup"
	ActionLogin       = "login"
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionUpload      = "video_upload"
	ActionUpdate      = "video_update"
	ActionDelete      = "video_delete"
	ActionLike        = "like"
	ActionDislike     = "dislike"
	ActionView        = "view"
	ActionComment     = "comment_create"
	ActionEditComment = "comment_update"
	ActionDelComment  = "comment_delete"
)

// Outcomes reported to MetricsRecorder.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

type MetricsRecorder interface {
	RecordAction(action, outcome string)
}
