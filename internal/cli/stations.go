package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/janusbot/janus/internal/station"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List configured stations",
	RunE:  stationsAction,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func stationsAction(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	printStations(os.Stdout, cfg.Stations)
	return nil
}

func printStations(w io.Writer, stations []station.Station) {
	idWidth, nameWidth := 2, 4
	for _, st := range stations {
		idWidth = max(idWidth, runewidth.StringWidth(st.ID))
		nameWidth = max(nameWidth, runewidth.StringWidth(st.Name))
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %-12s  %s\n",
		runewidth.FillRight("ID", idWidth), runewidth.FillRight("NAME", nameWidth), "TYPE", "URL")
	for _, st := range stations {
		typ := st.Type
		if st.Row == station.RowLast {
			typ += " (last)"
		}
		_, _ = fmt.Fprintf(w, "%s  %s  %-12s  %s\n",
			runewidth.FillRight(st.ID, idWidth), runewidth.FillRight(st.Name, nameWidth), typ, st.URL)
	}
	_, _ = fmt.Fprintf(w, "\n%d stations\n", len(stations))
}
