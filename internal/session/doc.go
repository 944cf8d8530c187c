// Package session owns the conversation the user is looking at.
//
// # Overview
//
// A Controller holds the transcript of the active conversation, the
// composer's pending image, and the flags that gate submission. It
// reconciles that state against a store.Store.
//
// # Tasks
//
// Operations that need the network change local state right away and
// return an async.Task. The caller runs the Task off the event loop and
// calls Apply on its Result back on the loop. Apply is where responses are
// checked for staleness:
//
//   - A submit reply is appended only if its conversation is still active.
//     The sending flag is reset either way.
//   - A transcript load is applied only if no navigation (select, create,
//     or deletion of the active conversation) happened since it started.
//   - An image preview is applied only if the same image is still selected.
//
// # Lifecycle
//
// Initialize: lists conversations and opens the most recently updated one,
// or creates "New Conversation" when there are none. Runs once.
//
// SelectConversation / CreateConversation: switch the active conversation.
//
// Submit: appends the user's message optimistically, then appends the bot's
// reply, or an apology when the request fails. Only one submit may be in
// flight.
//
// RequestClear / ConfirmClear / CancelClear: two-step clearing of the
// active transcript. A failed clear leaves both the transcript and the
// prompt untouched.
//
// OnConversationDeleted: called by the sidebar after a delete succeeds.
package session
