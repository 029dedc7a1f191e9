package options

import (
	"fmt"

	"github.com/pkglisting/pkglisting/internal/cmd"
	"github.com/pkglisting/pkglisting/internal/cmd/output"
	"github.com/pkglisting/pkglisting/internal/config"
	"github.com/pkglisting/pkglisting/internal/host"
	"github.com/pkglisting/pkglisting/internal/listing"
	"github.com/pkglisting/pkglisting/internal/printer"
)

type CmdOption func(*CmdOptions) error

type CmdOptions struct {
	ConfigLoader      config.Loader
	ConfigInitializer config.Initializer
	ClientBuilder     host.Builder
	Printer           output.Printer[*listing.Listing]
}

func defaultOptions() CmdOptions {
	configLoader := &config.DefaultLoader{}
	return CmdOptions{
		ConfigLoader:      configLoader,
		ConfigInitializer: configLoader,
		ClientBuilder:     &cmd.BaseCmd{},
		Printer:           &printer.ListingPrinter{},
	}
}

func NewOptions(opt ...CmdOption) (CmdOptions, error) {
	opts := defaultOptions()

	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(&opts); err != nil {
			return CmdOptions{}, err
		}
	}
	return opts, nil
}

func WithConfigLoader(l config.Loader) CmdOption {
	return func(o *CmdOptions) error {
		if l == nil {
			return fmt.Errorf("config loader cannot be nil")
		}
		o.ConfigLoader = l
		return nil
	}
}

func WithConfigInitializer(i config.Initializer) CmdOption {
	return func(o *CmdOptions) error {
		if i == nil {
			return fmt.Errorf("config initializer cannot be nil")
		}
		o.ConfigInitializer = i
		return nil
	}
}

// WithClientBuilder replaces how commands create the release host client, e.g. to point them at a test server.
func WithClientBuilder(b host.Builder) CmdOption {
	return func(o *CmdOptions) error {
		if b == nil {
			return fmt.Errorf("client builder cannot be nil")
		}
		o.ClientBuilder = b
		return nil
	}
}

func WithPrinter(p output.Printer[*listing.Listing]) CmdOption {
	return func(o *CmdOptions) error {
		if p == nil {
			return fmt.Errorf("printer cannot be nil")
		}
		o.Printer = p
		return nil
	}
}
