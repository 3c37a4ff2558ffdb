// Package driving defines the driving ports: the use-case interfaces the
// core services expose to request handlers such as the MCP adapter.
package driving
