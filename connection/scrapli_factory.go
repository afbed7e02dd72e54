package connection

import (
	"context"
	"time"
)

type ScrapliFactory struct{}

func (f *ScrapliFactory) Create(config ConnectionConfig) (ProtocolDriver, error) {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	driver := &ScrapliDriver{
		host:     config.Host,
		username: config.Username,
		password: config.Password,
		platform: string(config.Platform),
		timeout:  config.Timeout,
	}
	if err := driver.Connect(); err != nil {
		return nil, err
	}
	return driver, nil
}

func (f *ScrapliFactory) HealthCheck(driver ProtocolDriver) bool {
	_, err := driver.Execute(context.Background(), &ProtocolRequest{
		CommandType: CommandTypeCommands,
		Payload:     []string{"show version"},
	})
	return err == nil
}
