package lens

// Phase は撮影フローの現在地を表します。
// 遷移は Idle → CheckingKey → Analyzing → Rendering → Done の一方向で、
// 実行中のどの段階からでも Failed に落ちることがあります。
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseCheckingKey Phase = "checking_key"
	PhaseAnalyzing   Phase = "analyzing"
	PhaseRendering   Phase = "rendering"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// PhaseListener は段階が切り替わるたびに呼ばれるコールバックです。
// Lens のロック外から呼ばれるため、リスナー内で Lens のメソッドを呼んでも構いません。
type PhaseListener func(phase Phase)
