package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/janusbot/janus/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config directory with an example config",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}

	if wrote {
		fmt.Printf("Initialized %s.\n", configDir)
	} else {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# janus configuration

# Station types: meteoproject and table extract the first data row of the page's
# first table (row: last picks the newest row instead), feed reads an RSS/Atom
# feed, anything else stores a text preview of the page.
stations:
  - id: grezzana
    name: Grezzana (ARPAV)
    url: https://wwwold.arpa.veneto.it/bollettini/meteo/h24/img12/Mappa_TEMP.htm?x=24060
    type: arpav
  - id: marzana
    name: Marzana
    url: https://stazioni.meteoproject.it/dati/marzana/
    type: meteoproject
  - id: torricelle
    name: Torricelle
    url: https://stazioni.meteoproject.it/dati/torricelle/
    type: meteoproject
  - id: gazzego
    name: Contrada Gazzego
    url: https://evrgreen.it/
    type: evrgreen
  - id: belvedere
    name: Via Belvedere
    url: https://evrgreen.it/
    type: evrgreen
  - id: biancospini
    name: Via dei Biancospini
    url: https://evrgreen.it/
    type: evrgreen
  - id: montorio
    name: Montorio
    url: https://www.montorioveronese.it/template/indexDesktop.php
    type: montorio
  - id: antonio_legnago
    name: Via Antonio da Legnago
    url: https://evrgreen.it/
    type: evrgreen
  - id: borgo_venezia
    name: Borgo Venezia
    url: https://www.meteonlinebvvr.altervista.org/
    type: meteonline
  - id: forte_san_mattia
    name: Forte San Mattia
    url: https://evrgreen.it/
    type: evrgreen

fetch:
  user_agent: "JanusBot/1.0 (+https://github.com/janusbot/janus)"
  # user_agent_env: JANUS_USER_AGENT  # may also be set in .janus/.env
  table_timeout: 15s
  generic_timeout: 12s
  delay: 1.5s

output:
  path: docs/data/dati.json
  interval_minutes: 15

storage:
  enabled: true
  path: .janus/history.db
  retain_days: 30

log:
  level: info
  format: text
`
