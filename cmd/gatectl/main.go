// gatectl — консольный клиент гейта требований.
//
// Usage:
//
//	gatectl check --action create_tariff --clinic c1 [--service s9]
//	gatectl status --action create_treatment --clinic c1
//	gatectl progress --clinic c1
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "gatectl",
		Usage: "Requirements gate console client",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "http://localhost:8080",
				Usage:   "Gate API base URL",
				EnvVars: []string{"GATE_ADDR"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token (RS256)",
				EnvVars: []string{"GATE_TOKEN"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 15 * time.Second,
				Usage: "Request timeout",
			},
		},

		Commands: []*cli.Command{
			checkCommand(),
			statusCommand(),
			progressCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run the gate for a business action (triggers remediation)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Required: true,
				Usage: "create_service | create_tariff | create_treatment"},
			&cli.StringFlag{Name: "clinic", Aliases: []string{"c"}, Required: true},
			&cli.StringFlag{Name: "service", Aliases: []string{"s"}},
		},
		Action: func(c *cli.Context) error {
			body, _ := json.Marshal(map[string]string{
				"clinic_id":  c.String("clinic"),
				"service_id": c.String("service"),
			})
			return call(c, http.MethodPost, checkURL(c.String("addr"), c.String("action")), body)
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Dry requirement status for an action (no side effects)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "action", Aliases: []string{"a"}, Required: true},
			&cli.StringFlag{Name: "clinic", Aliases: []string{"c"}, Required: true},
			&cli.StringFlag{Name: "service", Aliases: []string{"s"}},
		},
		Action: func(c *cli.Context) error {
			u := statusURL(c.String("addr"), c.String("action"), c.String("clinic"), c.String("service"))
			return call(c, http.MethodGet, u, nil)
		},
	}
}

func progressCommand() *cli.Command {
	return &cli.Command{
		Name:  "progress",
		Usage: "Onboarding progress (financial + catalog phases)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "clinic", Aliases: []string{"c"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			return call(c, http.MethodGet, progressURL(c.String("addr"), c.String("clinic")), nil)
		},
	}
}

// Сборка URL: значения флагов уходят только через экранирование —
// id с пробелом или & не должен ломать запрос.

func checkURL(addr, action string) string {
	return fmt.Sprintf("%s/v1/guard/%s/check", addr, url.PathEscape(action))
}

func statusURL(addr, action, clinic, service string) string {
	q := url.Values{}
	q.Set("action", action)
	q.Set("clinicId", clinic)
	if service != "" {
		q.Set("serviceId", service)
	}
	return addr + "/v1/requirements/status?" + q.Encode()
}

func progressURL(addr, clinic string) string {
	q := url.Values{}
	q.Set("clinicId", clinic)
	return addr + "/v1/onboarding/progress?" + q.Encode()
}

// call выполняет запрос и печатает ответ с отступами.
func call(c *cli.Context, method, url string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(c.Context, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.String("token"); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	client := &http.Client{Timeout: c.Duration("timeout")}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if json.Indent(&pretty, raw, "", "  ") == nil {
		fmt.Println(pretty.String())
	} else {
		fmt.Println(string(raw))
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("gate returned %s", resp.Status)
	}
	return nil
}
