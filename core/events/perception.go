package events

const (
	// KindGesturePerceived identifies a discrete gesture notification.
	KindGesturePerceived Kind = "perception.gesture"
	// KindFacesPerceived identifies a discrete face-detection notification.
	KindFacesPerceived Kind = "perception.faces"
	// KindFramePublished identifies a camera still submitted on the channel.
	KindFramePublished Kind = "perception.frame_published"
)

// GesturePerceived marks a gesture notification from the perception
// collaborator being forwarded to the session.
type GesturePerceived struct {
	Base
	Label string
}

// NewGesturePerceived creates a gesture perceived event.
func NewGesturePerceived(label string) GesturePerceived {
	return GesturePerceived{Base: NewBase(KindGesturePerceived), Label: label}
}

// FacesPerceived marks a face-detection notification being forwarded to
// the session.
type FacesPerceived struct {
	Base
	Count int
}

// NewFacesPerceived creates a faces perceived event.
func NewFacesPerceived(count int) FacesPerceived {
	return FacesPerceived{Base: NewBase(KindFacesPerceived), Count: count}
}

// FramePublished marks one camera still being submitted on the channel.
type FramePublished struct {
	Base
	Bytes int
}

// NewFramePublished creates a frame published event.
func NewFramePublished(bytes int) FramePublished {
	return FramePublished{Base: NewBase(KindFramePublished), Bytes: bytes}
}
