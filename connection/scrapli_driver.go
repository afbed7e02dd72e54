package connection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charlesren/ylog"
	"github.com/scrapli/scrapligo/driver/network"
	"github.com/scrapli/scrapligo/driver/options"
	"github.com/scrapli/scrapligo/platform"
	"github.com/scrapli/scrapligo/response"
)

// ScrapliDriver drives platforms scrapligo knows natively. Prompt handling
// and paging are scrapligo's problem here; the hand-framed Session covers
// everything else.
type ScrapliDriver struct {
	host     string
	username string
	password string
	platform string
	timeout  time.Duration

	mu     sync.Mutex
	driver *network.Driver
}

func (d *ScrapliDriver) ProtocolType() Protocol {
	return ProtocolScrapli
}

func (d *ScrapliDriver) GetCapability() ProtocolCapability {
	return ScrapliCapability
}

func (d *ScrapliDriver) Execute(ctx context.Context, req *ProtocolRequest) (*ProtocolResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.driver == nil {
		return nil, fmt.Errorf("driver not connected")
	}
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}
	if req.CommandType != CommandTypeCommands {
		return nil, ErrUnsupportedCommandType
	}
	cmds, ok := req.Payload.([]string)
	if !ok {
		return nil, fmt.Errorf("invalid commands payload")
	}

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// SendCommands blocks without a context, so run it on the side and race
	// it against the deadline.
	resultChan := make(chan struct {
		resp *response.MultiResponse
		err  error
	}, 1)

	ylog.Debugf("scrapli", "executing %d commands on %s", len(cmds), d.host)
	go func() {
		resp, err := d.driver.SendCommands(cmds)
		resultChan <- struct {
			resp *response.MultiResponse
			err  error
		}{resp, err}
	}()

	select {
	case <-ctx.Done():
		ylog.Warnf("scrapli", "command execution timed out or cancelled: %v", ctx.Err())
		return nil, ctx.Err()
	case result := <-resultChan:
		if result.err != nil {
			ylog.Errorf("scrapli", "command execution failed: %v", result.err)
			return nil, result.err
		}
		var rawData strings.Builder
		for i, r := range result.resp.Responses {
			rawData.WriteString(r.Result)
			if i < len(result.resp.Responses)-1 {
				rawData.WriteString("\n")
			}
		}
		return &ProtocolResponse{Success: true, RawData: []byte(rawData.String())}, nil
	}
}

// Connect builds the platform driver and opens the channel.
func (d *ScrapliDriver) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := platform.NewPlatform(
		d.platform,
		d.host,
		options.WithAuthNoStrictKey(),
		options.WithAuthUsername(d.username),
		options.WithAuthPassword(d.password),
		options.WithTimeoutOps(d.timeout),
	)
	if err != nil {
		return fmt.Errorf("create platform failed: %w", err)
	}
	driver, err := p.GetNetworkDriver()
	if err != nil {
		return fmt.Errorf("get network driver failed: %w", err)
	}
	if err = driver.Open(); err != nil {
		return fmt.Errorf("open connection failed: %w", err)
	}
	d.driver = driver
	return nil
}

// GetPrompt returns the device prompt as scrapligo sees it.
func (d *ScrapliDriver) GetPrompt() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.driver == nil {
		return "", fmt.Errorf("driver not connected")
	}
	return d.driver.GetPrompt()
}

func (d *ScrapliDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.driver == nil {
		return nil
	}
	err := d.driver.Close()
	d.driver = nil
	return err
}
