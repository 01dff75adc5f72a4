// Package submit relays validated forms to an external form backend.
//
// A Submitter runs the lifecycle Idle, Validating, Invalid or Sending,
// Success or Error. Local failures never reach the network. Every attempt
// that does is stamped with Metadata (UTC and local timestamps plus a random
// submission id) and posted as multipart/form-data with
// "Accept: application/json". Failures come back as typed errors alongside a
// Result that is always safe to show to the user.
package submit
