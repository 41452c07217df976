package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ogahub/ogalib"
	"github.com/ogahub/ogalib/job"
	"github.com/ogahub/ogalib/webnet"
)

// errRequestFailed signals a failed request whose result was already
// printed.
var errRequestFailed = errors.New("request failed")

func serviceFlags() []cli.Flag {
	return append(outputFlags(),
		&cli.PathFlag{Name: "config", Usage: "JSON config file", EnvVars: []string{"OGALIB_CONFIG"}},
		&cli.StringFlag{Name: "base-api", Usage: "service root URL", EnvVars: []string{"OGALIB_BASE_API"}},
		&cli.StringFlag{Name: "api-key", Usage: "service API key", EnvVars: []string{"OGALIB_API_KEY"}},
		&cli.BoolFlag{Name: "insecure", Usage: "skip TLS certificate verification", EnvVars: []string{"OGALIB_IGNORE_SSL_ERRORS"}},
		&cli.DurationFlag{Name: "receive-timeout", Usage: "limit for each read of the response body"},
	)
}

// loadConfig layers flags and environment over the config file over the
// defaults.
func loadConfig(c *cli.Context) (webnet.Config, error) {
	cfg := webnet.DefaultConfig()
	if path := c.Path("config"); path != "" {
		var err error
		if cfg, err = webnet.LoadConfig(path); err != nil {
			return cfg, err
		}
	}
	if c.IsSet("base-api") {
		cfg.BaseAPI = c.String("base-api")
	}
	if c.IsSet("api-key") {
		cfg.APIKey = c.String("api-key")
	}
	if c.IsSet("insecure") {
		cfg.IgnoreSSLErrors = c.Bool("insecure")
	}
	if c.IsSet("receive-timeout") {
		cfg.ReceiveTimeout = c.Duration("receive-timeout")
	}
	return cfg, nil
}

// await submits through start and runs the owning loop until the result
// callback fired.
func await(c *cli.Context, pool *job.Pool, start func(done func(*ogalib.Value)) error) (*ogalib.Value, error) {
	var result *ogalib.Value
	if err := start(func(v *ogalib.Value) { result = v.Clone() }); err != nil {
		return nil, err
	}
	err := job.RunLoop(c.Context, pool, job.LoopConfig{Hz: 100}, func() error {
		if result != nil {
			return job.ErrStop
		}
		return nil
	})
	return result, err
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "send an HTTP request and print the result document",
		ArgsUsage: "<url>",
		Flags: append(serviceFlags(),
			&cli.StringFlag{Name: "method", Aliases: []string{"X"}, Value: "GET"},
			&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "request body"},
			&cli.StringFlag{Name: "content-type", Usage: "body content type"},
			&cli.StringFlag{Name: "bearer", Usage: "bearer token"},
			&cli.BoolFlag{Name: "use-api-key", Usage: "send the API key as bearer token"},
			&cli.BoolFlag{Name: "skip-response", Usage: "discard the response body"},
		),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("send: missing url")
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}

			params := ogalib.New(ogalib.Obj{{Key: "method", Value: c.String("method")}})
			if c.IsSet("data") {
				params.Key("data").Assign(c.String("data"))
			}
			if c.IsSet("content-type") {
				params.Key("contentType").Assign(c.String("content-type"))
			}
			if c.IsSet("bearer") {
				params.Key("bearer").Assign(c.String("bearer"))
			}
			params.Key("usesAPIKey").Assign(c.Bool("use-api-key"))
			params.Key("skipResponse").Assign(c.Bool("skip-response"))

			pool := job.NewPool(job.WithWorkers(1))
			defer pool.Close()
			client := webnet.New(cfg, pool)

			result, err := await(c, pool, func(done func(*ogalib.Value)) error {
				return client.SendURLAsync(c.Args().First(), params, done)
			})
			if err != nil {
				return err
			}
			if err := printValue(c, result); err != nil {
				return err
			}
			if it := result.Lookup("error"); it.Ok() {
				return errRequestFailed
			}
			return nil
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "log in with credentials from OGALIB_<NETWORK>_* variables",
		ArgsUsage: "<network>",
		Flags:     serviceFlags(),
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("login: missing network")
			}
			network := c.Args().First()
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.BaseAPI == "" {
				return errors.New("login: --base-api is required")
			}

			registry, err := webnet.NewRegistry(webnet.EnvProvider(network))
			if err != nil {
				return err
			}
			pool := job.NewPool(job.WithWorkers(1))
			defer pool.Close()
			client := webnet.New(cfg, pool, webnet.WithRegistry(registry))

			result, err := await(c, pool, func(done func(*ogalib.Value)) error {
				client.Login(network, done)
				return nil
			})
			if err != nil {
				return err
			}
			if it := result.Lookup("error"); it.Ok() {
				return fmt.Errorf("login: %s", it.Str())
			}
			session := client.Session()
			return printValue(c, ogalib.New(ogalib.Obj{
				{Key: "userId", Value: session.UserID()},
				{Key: "token", Value: session.Token()},
			}))
		},
	}
}
