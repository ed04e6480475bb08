package events

const (
	// KindToolCallReceived identifies a tool invocation from the service.
	KindToolCallReceived Kind = "tool_call.received"
	// KindToolCallAcknowledged identifies the mandatory tool-response frame
	// being sent back.
	KindToolCallAcknowledged Kind = "tool_call.acknowledged"
)

// ToolCallReceived marks the service invoking a tool.
type ToolCallReceived struct {
	Base
	ID        string
	Name      string
	Arguments string
}

// NewToolCallReceived creates a tool call received event.
func NewToolCallReceived(id, name, arguments string) ToolCallReceived {
	return ToolCallReceived{Base: NewBase(KindToolCallReceived), ID: id, Name: name, Arguments: arguments}
}

// ToolCallAcknowledged marks the tool-response frame being sent, whether or
// not the tool was recognized.
type ToolCallAcknowledged struct {
	Base
	ID   string
	Name string
}

// NewToolCallAcknowledged creates a tool call acknowledged event.
func NewToolCallAcknowledged(id, name string) ToolCallAcknowledged {
	return ToolCallAcknowledged{Base: NewBase(KindToolCallAcknowledged), ID: id, Name: name}
}
