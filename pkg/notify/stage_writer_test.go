package notify_test

import (
	"bytes"
	"testing"

	notify "github.com/devrig-sh/devrig/pkg/notify"
)

func TestStageSeparatingWriter_FirstTitleHasNoLeadingNewline(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	_, err := writer.Write([]byte("🐳 Provision 'docker'...\n"))
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	got := out.String()
	want := "🐳 Provision 'docker'...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_SecondTitleGetsSeparated(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	writes := []string{
		"🐳 Provision 'docker'...\n",
		"► checking install state\n",
		"🧰 Provision 'terraform'...\n",
	}
	for _, line := range writes {
		_, err := writer.Write([]byte(line))
		if err != nil {
			t.Fatalf("unexpected write error: %v", err)
		}
	}

	got := out.String()
	want := "🐳 Provision 'docker'...\n► checking install state\n\n🧰 Provision 'terraform'...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_ActivitySymbolsNotTreatedAsTitles(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	writes := []string{
		"► installing docker\n",
		"✔ docker installed\n",
		"⚠ readiness not confirmed\n",
	}
	for _, line := range writes {
		_, err := writer.Write([]byte(line))
		if err != nil {
			t.Fatalf("unexpected write error: %v", err)
		}
	}

	got := out.String()
	want := "► installing docker\n✔ docker installed\n⚠ readiness not confirmed\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_ProgressRedrawNotTreatedAsTitles(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	writes := []string{
		"🔍 Check tool status...\n",
		"⠦ docker checking\n",
		"○ jenkins pending\n",
	}
	for _, line := range writes {
		_, err := writer.Write([]byte(line))
		if err != nil {
			t.Fatalf("unexpected write error: %v", err)
		}
	}

	got := out.String()
	want := "🔍 Check tool status...\n⠦ docker checking\n○ jenkins pending\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}

func TestStageSeparatingWriter_UnderlyingReturnsWrapped(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	if writer.Underlying() != &out {
		t.Fatal("expected Underlying to return the wrapped writer")
	}
}

func TestStageSeparatingWriter_Reset(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	_, err := writer.Write([]byte("🐳 Provision 'docker'...\n"))
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	if !writer.HasWritten() {
		t.Fatal("expected HasWritten to be true after a write")
	}

	writer.Reset()

	if writer.HasWritten() {
		t.Fatal("expected HasWritten to be false after Reset")
	}

	_, err = writer.Write([]byte("🧰 Provision 'terraform'...\n"))
	if err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	got := out.String()
	want := "🐳 Provision 'docker'...\n🧰 Provision 'terraform'...\n"

	if got != want {
		t.Fatalf("output mismatch. want %q, got %q", want, got)
	}
}
