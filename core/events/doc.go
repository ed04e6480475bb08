// Package events defines the typed engine event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - state.*
//   - transcript.*
//   - playback.*
//   - perception.*
//   - mood.*
//   - tool_call.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in arrival order, belonging
//     to the turn currently being accumulated.
//   - Entry: finalized transcript line flushed at a turn boundary.
//   - Fragment: one decoded unit of synthesized speech.
//
// session events
//
//   - SessionOpened (session.opened): channel ready, session live.
//   - SessionRetrying (session.retrying): open failed, another attempt is
//     scheduled; includes attempt number and delay.
//   - SessionClosed (session.closed): channel closed with code and reason.
//   - SessionFailed (session.failed): retries exhausted or fatal error.
//
// state events
//
//   - StateChanged (state.changed): interaction state transition.
//
// transcript events
//
//   - TranscriptSegment (transcript.segment): partial transcript piece for
//     one side of the conversation.
//   - TranscriptEntry (transcript.entry): finalized line flushed at turn
//     completion, exactly one per non-empty accumulated side.
//
// playback events
//
//   - PlaybackStarted (playback.started): first in-flight fragment for a
//     response began playing.
//   - PlaybackEnded (playback.ended): in-flight set drained naturally.
//   - PlaybackInterrupted (playback.interrupted): barge-in discarded all
//     in-flight fragments.
//
// perception events
//
//   - GesturePerceived (perception.gesture): discrete gesture notification
//     forwarded to the session.
//   - FacesPerceived (perception.faces): discrete face-detection
//     notification forwarded to the session.
//   - FramePublished (perception.frame_published): one camera still was
//     submitted on the channel.
//
// mood events
//
//   - MoodChanged (mood.changed): the avatar mood signal was overwritten.
//
// tool_call events
//
//   - ToolCallReceived (tool_call.received): the service invoked a tool.
//   - ToolCallAcknowledged (tool_call.acknowledged): the mandatory
//     tool-response frame was sent back.
package events
