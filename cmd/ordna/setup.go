package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/larsvincent/ordna/pkg/ordna/ai"
	"github.com/larsvincent/ordna/pkg/ordna/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive first-run configuration",
	Long: `Walk through the settings ordna needs and write them to the config
file. Existing values are kept as defaults. Leave the API key blank to
organize by extension rules alone.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

// Wizard steps in input order.
const (
	stepAPIKey = iota
	stepModel
	stepTarget
)

var setupTitles = [...]string{
	"OpenRouter API key (blank = extension rules only)",
	"Model",
	"Directory to organize",
}

// setupModel is the bubbletea model for the setup wizard. One text input
// per step; enter advances, esc aborts.
type setupModel struct {
	inputs  []textinput.Model
	step    int
	aborted bool
}

func newSetupModel(cfg *config.Config) setupModel {
	key := textinput.New()
	key.Placeholder = "sk-or-..."
	key.EchoMode = textinput.EchoPassword
	key.EchoCharacter = '*'
	key.CharLimit = 256
	key.Width = 48
	key.Focus()

	model := textinput.New()
	model.Placeholder = ai.DefaultModel
	model.SetValue(cfg.AI.Model)
	model.CharLimit = 128
	model.Width = 48

	target := textinput.New()
	target.Placeholder = config.DefaultTarget
	target.SetValue(cfg.Target)
	target.CharLimit = 512
	target.Width = 48

	return setupModel{inputs: []textinput.Model{key, model, target}}
}

func (m setupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.inputs[m.step].Blur()
			m.step++
			if m.step >= len(m.inputs) {
				return m, tea.Quit
			}
			return m, m.inputs[m.step].Focus()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.step], cmd = m.inputs[m.step].Update(msg)
	return m, cmd
}

func (m setupModel) View() string {
	if m.aborted || m.step >= len(m.inputs) {
		return ""
	}

	var b strings.Builder
	b.WriteString("ordna setup\n\n")
	for i := 0; i <= m.step; i++ {
		b.WriteString(setupTitles[i])
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}
	b.WriteString("enter: next  esc: abort\n")
	return b.String()
}

// runSetup is the setup command handler.
func runSetup(_ *cobra.Command, args []string) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("setup needs an interactive terminal; use 'ordna config init' instead")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	final, err := tea.NewProgram(newSetupModel(cfg)).Run()
	if err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	m, ok := final.(setupModel)
	if !ok || m.aborted {
		printInfo("Setup aborted, nothing written.")
		return nil
	}

	apiKey := strings.TrimSpace(m.inputs[stepAPIKey].Value())
	model := strings.TrimSpace(m.inputs[stepModel].Value())
	if model == "" {
		model = ai.DefaultModel
	}
	target := strings.TrimSpace(m.inputs[stepTarget].Value())
	if target == "" {
		target = config.DefaultTarget
	}

	path, err := writeSetupConfig(cfg, apiKey, model, target)
	if err != nil {
		return err
	}

	printInfo("Wrote %s", path)
	if apiKey == "" {
		printInfo("No API key set; runs will use extension rules only.")
	}
	return nil
}

// writeSetupConfig persists the wizard answers, carrying every other
// setting over from the loaded configuration.
func writeSetupConfig(cfg *config.Config, apiKey, model, target string) (string, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return "", err
	}

	path, err := config.ConfigPath()
	if err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("target", target)
	v.Set("rename", cfg.Rename)
	v.Set("exclude", cfg.Exclude)
	v.Set("ai.api_key", apiKey)
	v.Set("ai.model", model)
	v.Set("ai.base_url", cfg.AI.BaseURL)
	v.Set("ai.granularity", cfg.AI.Granularity)
	v.Set("watch.interval", cfg.Watch.Interval)
	v.Set("watch.settle", cfg.Watch.Settle)
	v.Set("cache.enabled", cfg.Cache.Enabled)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("manifest.path", cfg.Manifest.Path)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.path", cfg.Logging.Path)
	v.Set("logging.rotation.max_size", cfg.Logging.Rotation.MaxSize)
	v.Set("logging.rotation.max_age", cfg.Logging.Rotation.MaxAge)
	v.Set("logging.rotation.max_backups", cfg.Logging.Rotation.MaxBackups)
	v.Set("logging.rotation.daily", cfg.Logging.Rotation.Daily)
	v.Set("logging.components", cfg.Logging.Components)

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return path, nil
}
