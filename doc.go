// Package main provides the entry point for the StudyBuddy server.
// It initializes and runs a web server using the Fiber framework that lets
// students create and join study groups, chat within a group and manage
// study resource metadata through a REST API. The application uses gorm
// for data persistence and publishes membership events to kafka through
// a transactional outbox.
package main
