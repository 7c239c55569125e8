// wormctl is a small command-line client for the wormkeeper HTTP API, handy
// for poking a running server without the game front-end.
//
// Usage:
//
//	wormctl [-s http://localhost:3001] [-d '{"coins":5}'] <command> [username]
//
// Commands: health, register, login, save, backup, restore. Commands taking a
// username prompt for the password without echo.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func getPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Enter password: ")
	if term.IsTerminal(int(os.Stdin.Fd())) {
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	// piped input (scripts, tests)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func post(serverURL, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	resp, err := http.Post(serverURL+path, "application/json", body)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, out, nil
}

func get(serverURL, path string) (int, []byte, error) {
	resp, err := http.Get(serverURL + path)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, out, nil
}

type credentialsPayload struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func run() error {
	fs := flag.NewFlagSet("wormctl", flag.ExitOnError)
	serverURL := fs.String("s", "http://localhost:3001", "server base URL")
	dataArg := fs.String("d", "", "JSON data blob for register/save")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	args := fs.Args()
	if len(args) == 0 {
		return fmt.Errorf("usage: wormctl [-s url] [-d json] health|register|login|save|backup|restore [username]")
	}
	command := args[0]

	needsUser := command == "register" || command == "login" || command == "save"
	var payload *credentialsPayload
	if needsUser {
		if len(args) < 2 {
			return fmt.Errorf("%s needs a username", command)
		}
		password, err := getPassword()
		if err != nil {
			return err
		}
		payload = &credentialsPayload{Username: args[1], Password: password}
		if *dataArg != "" {
			payload.Data = json.RawMessage(*dataArg)
		}
	}

	var (
		status int
		out    []byte
		err    error
	)

	switch command {
	case "health":
		status, out, err = get(*serverURL, "/api/health")
	case "register":
		status, out, err = post(*serverURL, "/api/register", payload)
	case "login":
		status, out, err = post(*serverURL, "/api/login", payload)
	case "save":
		status, out, err = post(*serverURL, "/api/save", payload)
	case "backup":
		status, out, err = post(*serverURL, "/api/backup", struct{}{})
	case "restore":
		status, out, err = post(*serverURL, "/api/restore", struct{}{})
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}

	fmt.Println(strings.TrimSpace(string(out)))
	if status >= 300 {
		return fmt.Errorf("server returned %d", status)
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "wormctl:", err)
		os.Exit(1)
	}
}
