package messaging

import "fmt"

// Driver identifies a broker backend.
type Driver string

const (
	DriverNATS Driver = "nats"
	DriverNSQ  Driver = "nsq"
)

// Config holds broker connection settings.
type Config struct {
	// URL is the NATS server address.
	URL string
	// ProducerAddr is the NSQD address for publishing.
	ProducerAddr string
}

// New builds a Publisher for the given driver name.
func New(driver Driver, cfg Config) (Publisher, error) {
	switch driver {
	case DriverNATS:
		return NewNATS(cfg)
	case DriverNSQ:
		return NewNSQ(cfg)
	default:
		return nil, fmt.Errorf("messaging: unsupported driver %q", driver)
	}
}
