package config

import "strings"

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}

	c.Spotweb.BaseURL = strings.TrimRight(strings.TrimSpace(c.Spotweb.BaseURL), "/")
	c.Sabnzbd.BaseURL = strings.TrimRight(strings.TrimSpace(c.Sabnzbd.BaseURL), "/")
	c.Calibreweb.URL = strings.TrimRight(strings.TrimSpace(c.Calibreweb.URL), "/")

	c.Spotweb.APIKey = strings.TrimSpace(c.Spotweb.APIKey)
	c.Sabnzbd.APIKey = strings.TrimSpace(c.Sabnzbd.APIKey)
	c.Calibreweb.Username = strings.TrimSpace(c.Calibreweb.Username)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)

	return nil
}
