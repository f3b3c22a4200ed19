package config

import "strings"

// normalize expands paths and fills empty values with defaults so the rest
// of the daemon never sees a partially specified config.
func (c *Config) normalize() error {
	logDir, err := expandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	if logDir == "" {
		logDir, err = expandPath(defaultLogDir)
		if err != nil {
			return err
		}
	}
	c.Paths.LogDir = logDir

	c.Hyprsunset.Mode = strings.ToLower(strings.TrimSpace(c.Hyprsunset.Mode))
	if c.Hyprsunset.Mode == "" {
		c.Hyprsunset.Mode = defaultMode
	}
	c.Hyprsunset.Binary = strings.TrimSpace(c.Hyprsunset.Binary)
	if c.Hyprsunset.Binary == "" {
		c.Hyprsunset.Binary = defaultBinary
	}
	if c.Hyprsunset.SocketWaitAttempts <= 0 {
		c.Hyprsunset.SocketWaitAttempts = defaultSocketWaitAttempts
	}
	if c.Hyprsunset.SocketWaitIntervalSecs <= 0 {
		c.Hyprsunset.SocketWaitIntervalSecs = defaultSocketWaitIntervalSecs
	}
	if c.Hyprsunset.CommandTimeoutMillis <= 0 {
		c.Hyprsunset.CommandTimeoutMillis = defaultCommandTimeoutMillis
	}
	if c.Hyprsunset.ProcessRestartDelayMilli <= 0 {
		c.Hyprsunset.ProcessRestartDelayMilli = defaultProcessRestartDelayMilli
	}

	if c.Scheduler.DriftDelaySeconds < 0 {
		c.Scheduler.DriftDelaySeconds = defaultDriftDelaySeconds
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	return nil
}
