package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkweon/rollcall"
	"github.com/mkweon/rollcall/pkg/client"
)

// command groups the remote handlers. Every command talks to a running
// daemon over its HTTP API; there is no direct-to-file mode.
type command struct{}

func apiClient(f APIFlags) (*client.Client, error) {
	cfg := client.DefaultConfig()
	if f.APIUrl != "" {
		cfg.BaseURL = f.APIUrl
	}
	if f.APITimeout > 0 {
		cfg.Timeout = f.APITimeout
	}
	c := client.New(cfg)
	if !c.IsReachable(context.Background()) {
		return nil, fmt.Errorf("daemon not reachable at %s - start it first with 'rollcall serve'", cfg.BaseURL)
	}
	return c, nil
}

func (command) Status(f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	st, err := c.Status(context.Background())
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

func (command) List(f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	infos, err := c.Processes(context.Background())
	if err != nil {
		return err
	}
	printJSON(infos)
	return nil
}

func (command) Toggle(participant string, f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	st, err := c.Toggle(context.Background(), participant)
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

func (command) Save(f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	if err := c.Save(context.Background()); err != nil {
		return err
	}
	fmt.Println("saved")
	return nil
}

func (command) Discard(f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	if err := c.Discard(context.Background()); err != nil {
		return err
	}
	fmt.Println("discarded")
	return nil
}

func (command) Switch(name string, f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	st, err := c.Switch(context.Background(), name)
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

func (command) Create(f CreateFlags, configPath string) error {
	req := client.CreateRequest{
		Name:        f.Name,
		Unfinished:  f.Participants,
		AtNames:     f.AtNames,
		Description: f.Description,
	}
	if f.File != "" {
		data, err := os.ReadFile(f.File)
		if err != nil {
			return fmt.Errorf("read create file: %w", err)
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return fmt.Errorf("parse create file %s: %w", f.File, err)
		}
	}
	if len(req.Unfinished) == 0 {
		cfg, err := rollcall.LoadConfig(configPath)
		if err != nil {
			return err
		}
		req.Unfinished = cfg.Names
	}
	c, err := apiClient(f.APIFlags)
	if err != nil {
		return err
	}
	return c.Create(context.Background(), req)
}

func (command) SetMode(name, mode string, f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	return c.SetMode(context.Background(), name, mode)
}

func (command) Delete(name string, f APIFlags) error {
	c, err := apiClient(f)
	if err != nil {
		return err
	}
	return c.Delete(context.Background(), name)
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
