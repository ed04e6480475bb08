// Package tools holds the invokable tool declarations advertised to the
// remote conversational service when a session is opened.
package tools

import (
	"github.com/invopop/jsonschema"
)

const (
	SetMoodName        = "set_mood"
	ExpressGestureName = "express_gesture"
)

// Declaration describes one invokable tool: its name, what it does, and a
// JSON schema for its arguments.
type Declaration struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Declare builds a declaration with the argument schema reflected from T.
func Declare[T any](name, description string) Declaration {
	reflector := jsonschema.Reflector{DoNotReference: true}
	var args T
	schema := reflector.Reflect(&args)
	schema.Version = ""

	return Declaration{Name: name, Description: description, Parameters: schema}
}

// SetMoodArgs is the argument payload of the set_mood tool.
type SetMoodArgs struct {
	Mood string `json:"mood" jsonschema:"title=Mood,description=The mood to show on the avatar,enum=neutral,enum=happy,enum=curious,enum=alert,enum=excited,enum=sad,enum=sleepy"`
}

// ExpressGestureArgs is the argument payload of the express_gesture tool.
type ExpressGestureArgs struct {
	Gesture string `json:"gesture" jsonschema:"title=Gesture,description=A short physical gesture for the avatar to act out,enum=wave,enum=nod,enum=shake,enum=wiggle,enum=look_around"`
}

// SetMood declares the tool the service calls to change the avatar mood.
func SetMood() Declaration {
	return Declare[SetMoodArgs](SetMoodName, "Change the mood shown on the companion's avatar")
}

// ExpressGesture declares the tool the service calls to act out a gesture.
func ExpressGesture() Declaration {
	return Declare[ExpressGestureArgs](ExpressGestureName, "Act out a short physical gesture on the companion's avatar")
}

// Defaults returns the declarations a companion session advertises unless
// configured otherwise.
func Defaults() []Declaration {
	return []Declaration{SetMood(), ExpressGesture()}
}
