// Package mail defines the contract for sending email messages and ships an
// SMTP implementation built on go-mail, plus a no-op sender for
// environments without SMTP.
package mail
