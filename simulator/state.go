package simulator

// DeviceState is the lifecycle state simctl reports for a simulator device.
type DeviceState string

const (
	// Shutdown ...
	Shutdown DeviceState = "Shutdown"
	// Booted ...
	Booted DeviceState = "Booted"
	// ShuttingDown ...
	ShuttingDown DeviceState = "Shutting Down"
	// Unknown is reported for any state label this package doesn't recognise.
	Unknown DeviceState = "Unknown"
)

func parseDeviceState(label string) DeviceState {
	switch label {
	case "Booted":
		return Booted
	case "Shutting Down":
		return ShuttingDown
	case "Shutdown":
		return Shutdown
	default:
		return Unknown
	}
}
