// Package logging provides the slog-backed logger every gateway component
// logs through: Debug/Info/Warn/Error calls tagged with a subsystem name
// ("ClientManager", "Registry", "Forwarder", "Connector", "Supervisor"),
// initialized once at startup via InitForCLI.
package logging
