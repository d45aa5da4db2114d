package verifier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	headerSuffix = " wants you to sign in with your Ethereum account:"
	fidResource  = "farcaster://fid/"
)

// SignInMessage is the subset of an EIP-4361 message the backend checks.
type SignInMessage struct {
	Domain         string
	Address        string
	URI            string
	Version        string
	ChainID        int64
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
	NotBefore      *time.Time
	Resources      []string
}

var errMalformedMessage = errors.New("malformed sign-in message")

func ParseMessage(raw string) (*SignInMessage, error) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) < 2 || !strings.HasSuffix(lines[0], headerSuffix) {
		return nil, fmt.Errorf("%w: missing header", errMalformedMessage)
	}

	msg := &SignInMessage{
		Domain:  strings.TrimSuffix(lines[0], headerSuffix),
		Address: strings.TrimSpace(lines[1]),
	}

	inResources := false
	for _, line := range lines[2:] {
		if inResources {
			if strings.HasPrefix(line, "- ") {
				msg.Resources = append(msg.Resources, strings.TrimPrefix(line, "- "))
				continue
			}
			inResources = false
		}

		field, value, found := strings.Cut(line, ": ")
		if !found {
			if line == "Resources:" {
				inResources = true
			}
			continue
		}

		var err error
		switch field {
		case "URI":
			msg.URI = value
		case "Version":
			msg.Version = value
		case "Chain ID":
			msg.ChainID, err = strconv.ParseInt(value, 10, 64)
		case "Nonce":
			msg.Nonce = value
		case "Issued At":
			msg.IssuedAt, err = time.Parse(time.RFC3339, value)
		case "Expiration Time":
			var t time.Time
			t, err = time.Parse(time.RFC3339, value)
			msg.ExpirationTime = &t
		case "Not Before":
			var t time.Time
			t, err = time.Parse(time.RFC3339, value)
			msg.NotBefore = &t
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", errMalformedMessage, field, err)
		}
	}

	if msg.Domain == "" || msg.Address == "" || msg.Nonce == "" {
		return nil, fmt.Errorf("%w: missing required field", errMalformedMessage)
	}
	return msg, nil
}

// Fid extracts the farcaster id from the message resources.
func (m *SignInMessage) Fid() (int64, error) {
	for _, resource := range m.Resources {
		if !strings.HasPrefix(resource, fidResource) {
			continue
		}
		fid, err := strconv.ParseInt(strings.TrimPrefix(resource, fidResource), 10, 64)
		if err != nil || fid <= 0 {
			return 0, fmt.Errorf("%w: bad fid resource", errMalformedMessage)
		}
		return fid, nil
	}
	return 0, fmt.Errorf("%w: no fid resource", errMalformedMessage)
}

// NonceOf returns the nonce embedded in a sign-in message, or "" if the
// message cannot be parsed.
func NonceOf(raw string) string {
	msg, err := ParseMessage(raw)
	if err != nil {
		return ""
	}
	return msg.Nonce
}
