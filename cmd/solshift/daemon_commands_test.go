package main

import (
	"context"
	"testing"
)

func TestDaemonStartWhenAlreadyRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := env.daemon.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	out, _, err := runCLI(t, []string{"start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Daemon already running")
}

func TestStopCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := env.daemon.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	out, _, err := runCLI(t, []string{"stop"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	requireContains(t, out, "Daemon stopped")
	if env.daemon.Status().Running {
		t.Error("daemon still reports running")
	}
}

func TestStatusRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := env.daemon.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon")
	requireContains(t, out, "Running (pid")
	requireContains(t, out, "Solar Schedule")
	requireContains(t, out, "Phase")
}

func TestStatusOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "Sunrise (UTC)")
	requireContains(t, out, "Sunset (UTC)")
}

func TestReapply(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := env.daemon.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	out, _, err := runCLI(t, []string{"reapply"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("reapply: %v", err)
	}
	requireContains(t, out, "filter command applied")
}
