// Package review implements the human override state machine for review
// tasks.
//
// A task is actionable only while open; applying any action completes it
// exactly once. Approve and reject overwrite the verdict's directive,
// modify supersedes the claim with a human-authored replacement,
// request_evidence and escalate open follow-up tasks while leaving the
// verdict untouched. Every transition is recorded in the audit log.
package review
