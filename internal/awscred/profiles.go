// Package awscred resolves AWS credentials from the shared profile files and
// signs outbound requests with Signature Version 4.
package awscred

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrCredentialsFileMissing is returned when ~/.aws/credentials does not exist.
	ErrCredentialsFileMissing = errors.New("aws credentials file not found")

	// ErrProfileNotFound is returned when the named profile has no section in the credentials file.
	ErrProfileNotFound = errors.New("aws profile not found")

	// ErrInvalidCredentials is returned when a profile is missing its access key id or secret key.
	ErrInvalidCredentials = errors.New("aws profile has incomplete credentials")
)

// Credentials is a resolved set of AWS credentials. Region and SessionToken
// are optional; empty string means unset.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// Resolver reads named credential profiles from the standard shared
// credentials/config file pair (~/.aws/credentials and ~/.aws/config).
type Resolver struct {
	credentialsPath string
	configPath      string
}

// NewResolver creates a resolver over the default file locations, honoring
// the AWS_SHARED_CREDENTIALS_FILE and AWS_CONFIG_FILE overrides.
func NewResolver() *Resolver {
	home, _ := os.UserHomeDir()
	credPath := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credPath == "" {
		credPath = filepath.Join(home, ".aws", "credentials")
	}
	cfgPath := os.Getenv("AWS_CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = filepath.Join(home, ".aws", "config")
	}
	return &Resolver{credentialsPath: credPath, configPath: cfgPath}
}

// NewResolverAt creates a resolver over explicit file paths.
func NewResolverAt(credentialsPath, configPath string) *Resolver {
	return &Resolver{credentialsPath: credentialsPath, configPath: configPath}
}

// ListProfiles returns the section names of the credentials file in file
// order. Duplicate sections are reported as written. A missing credentials
// file yields an empty list, not an error.
func (r *Resolver) ListProfiles() ([]string, error) {
	sections, err := parseProfileFile(r.credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", r.credentialsPath, err)
	}

	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.name)
	}
	return names, nil
}

// GetCredentials resolves a profile name to concrete credentials. The region
// comes from the config file (section "default" for the default profile,
// "profile <name>" otherwise) and is optional.
func (r *Resolver) GetCredentials(profileName string) (Credentials, error) {
	sections, err := parseProfileFile(r.credentialsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrCredentialsFileMissing
		}
		return Credentials{}, fmt.Errorf("read %s: %w", r.credentialsPath, err)
	}

	values, ok := lookupSection(sections, profileName)
	if !ok {
		return Credentials{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profileName)
	}

	creds := Credentials{
		AccessKeyID:     values["aws_access_key_id"],
		SecretAccessKey: values["aws_secret_access_key"],
		SessionToken:    values["aws_session_token"],
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return Credentials{}, fmt.Errorf("%w: %s", ErrInvalidCredentials, profileName)
	}

	creds.Region = r.lookupRegion(profileName)
	return creds, nil
}

// lookupRegion reads the region for a profile from the config file. Absence
// of the file, the section, or the key all mean "no region".
func (r *Resolver) lookupRegion(profileName string) string {
	sections, err := parseProfileFile(r.configPath)
	if err != nil {
		return ""
	}

	sectionName := profileName
	if profileName != "default" {
		sectionName = "profile " + profileName
	}
	values, ok := lookupSection(sections, sectionName)
	if !ok {
		return ""
	}
	return values["region"]
}

// profileSection is one "[name]" block of an INI-style profile file.
type profileSection struct {
	name   string
	values map[string]string
}

// lookupSection merges every section with the given name, later keys winning.
func lookupSection(sections []profileSection, name string) (map[string]string, bool) {
	var merged map[string]string
	for _, s := range sections {
		if s.name != name {
			continue
		}
		if merged == nil {
			merged = make(map[string]string)
		}
		for k, v := range s.values {
			merged[k] = v
		}
	}
	return merged, merged != nil
}

// parseProfileFile parses the simple "[section] / key = value" format used by
// the AWS shared files. Blank lines and lines starting with '#' or ';' are
// ignored. A section name is the text strictly between the first '[' and the
// trailing ']' on its line, trimmed. Keys before any section are discarded.
func parseProfileFile(path string) ([]profileSection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sections []profileSection
	var current *profileSection

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if open := strings.Index(line, "["); open >= 0 {
			if end := strings.LastIndex(line, "]"); end > open {
				name := strings.TrimSpace(line[open+1 : end])
				sections = append(sections, profileSection{name: name, values: make(map[string]string)})
				current = &sections[len(sections)-1]
				continue
			}
		}

		if current == nil {
			continue
		}
		if eq := strings.Index(line, "="); eq > 0 {
			key := strings.TrimSpace(line[:eq])
			value := strings.TrimSpace(line[eq+1:])
			current.values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}
