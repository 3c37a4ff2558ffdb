// Package services contains the core business logic, implementing the
// driving ports on top of the driven ports. Services are thin: the
// stores own eviction and lifetime policy, the upstream client owns
// resilience, and the services compose them into the use cases.
package services
