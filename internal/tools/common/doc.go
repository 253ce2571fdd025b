// Package common provides the helpers shared by the tool packages: argument
// readers, the account_alias parameter, conversion of errors into the text
// the agent reads, and the instrumented handler wrapper.
package common
