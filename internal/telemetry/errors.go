package telemetry

import "fmt"

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", err.Field, err.Reason)
}

func (err *DuplicateChannelError) Error() string {
	return fmt.Sprintf("factory for channel %q already registered", err.Channel)
}

func (err *DuplicateStreamError) Error() string {
	return fmt.Sprintf("stream on channel %q for device %q package %q already running",
		err.Channel, err.DeviceID, err.PackageID)
}
