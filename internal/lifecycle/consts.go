package lifecycle

const (
	ReadyMessage       string = "READY"
	EnvNameReadinessFD string = "PERFOVERLAY_READY_FD"
)
