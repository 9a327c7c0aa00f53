package global

import "time"

const (
	// Descriptive Names for available verbosity levels
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Descriptive names for available severity levels
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgVersion string = "v0.3.1"

	// Context keys
	LoggerKey  CtxKey = "logger"  // Event queue (mostly for variable log verbosity handling)
	LogTagsKey CtxKey = "logtags" // List of tags in order of broad->specific appended/popped at various parts of the program

	DefaultConfigPath string = "/etc/perfoverlay.json"

	// Pipeline defaults
	DefaultSampleInterval   time.Duration = 1 * time.Second
	DefaultRetentionPeriod  time.Duration = 60 * time.Second
	DefaultSweepInterval    time.Duration = 5 * time.Second
	DefaultRefreshInterval  time.Duration = 500 * time.Millisecond
	DefaultQueueSize        int           = 1024
	DefaultSinkWorkers      int           = 2
	DefaultSubscriberBuffer int           = 16

	// Timeout values
	ShutdownTimeout   time.Duration = 5 * time.Second
	QueueDrainTimeout time.Duration = 2 * time.Second

	// Chart HTTP server
	HTTPListenPort   int           = 18514
	HTTPListenAddr   string        = "localhost" // Charts only exposed to local machine
	HTTPReadTimeout  time.Duration = 30 * time.Second
	HTTPWriteTimeout time.Duration = 10 * time.Second
	HTTPIdleTimeout  time.Duration = 180 * time.Second

	// HTTP paths
	ChannelsPath string = "/channels"
	DataPath     string = "/data/"
	ChartPath    string = "/chart/"

	// Well known channel names
	ChannelCPU      string = "cpu"
	ChannelMemory   string = "memory"
	ChannelGraphics string = "graphics"
	ChannelOverlay  string = "overlay"

	// Namespacing Name Components
	NSTest     string = "Test"
	NSCLI      string = "CLI"
	NSOverlay  string = "Overlay"
	NSRegistry string = "Registry"
	NSStream   string = "Stream"
	NSSink     string = "Sink"
	NSSweeper  string = "Sweeper"
	NSWorker   string = "Worker"
	NSRender   string = "Render"
	NSTerminal string = "Terminal"
	NSServer   string = "Server"
	NSQueue    string = "Queue"
)
