package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/G-Node/cascade/cascade"
	"github.com/G-Node/cascade/cascade/form"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		fixtures   string
		port       uint16
		dbPath     string
	)
	rootCmd := &cobra.Command{
		Use:   "bookselect",
		Short: "Serve a form for choosing an author and their books",
		Long: `bookselect serves two forms: at / a single book is chosen, at /2/ several.
The book choices are filtered by the selected author, and every submission
is checked against the catalog before it is accepted.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := cascade.DefaultConfig()
			if configPath != "" {
				var err error
				if config, err = cascade.LoadConfig(configPath); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("port") {
				config.Port = port
			}
			if cmd.Flags().Changed("db") {
				config.DBPath = dbPath
			}
			return run(config, fixtures)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML configuration file")
	rootCmd.Flags().StringVar(&fixtures, "fixtures", "", "YAML file with authors and books to load into a new database")
	rootCmd.Flags().Uint16VarP(&port, "port", "p", 3000, "port to listen on")
	rootCmd.Flags().StringVar(&dbPath, "db", "./cascade.db", "path to the database file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(config cascade.Config, fixtures string) error {
	srv, err := cascade.NewService(form.Form{}, selectionFunc, config)
	if err != nil {
		return err
	}
	if fixtures != "" {
		if err := srv.DB().LoadFixturesFile(fixtures); err != nil {
			return err
		}
	}

	single, err := cascade.BookSelectionForm(srv.DB(), false)
	if err != nil {
		return err
	}
	srv.SetForm(withDuration(single))

	multi, err := cascade.BookSelectionForm(srv.DB(), true)
	if err != nil {
		return err
	}
	if err := srv.AddForm("2", withDuration(multi)); err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Stop()
	log.Printf("Serving book selection forms at / and /2/ on port %d", config.Port)
	srv.WaitForInterrupt()
	return nil
}

// withDuration adds a page asking for the time the job should take.
func withDuration(f form.Form) form.Form {
	f.Description = "Choose an author first; the book list follows the selection."
	f.Pages = append(f.Pages, form.Page{
		Description: "Processing",
		Elements: []form.Element{
			{
				Name:        "duration",
				Label:       "Duration",
				Type:        form.NumberInput,
				Description: "Seconds to wait before finishing the job.  Use for simulating long-running jobs.",
			},
		},
	})
	return f
}

func selectionFunc(values map[string][]string) ([]string, error) {
	msgs := make([]string, 0)
	for _, author := range values["author"] {
		msgs = append(msgs, fmt.Sprintf("Author %s selected", author))
	}
	for _, book := range values["book"] {
		msgs = append(msgs, fmt.Sprintf("Book %s selected", book))
	}

	duration := ""
	if d := values["duration"]; len(d) > 0 {
		duration = d[0]
	}
	if duration != "" {
		d, err := strconv.Atoi(duration)
		if err != nil {
			return msgs, fmt.Errorf("Duration not an integer: %s", err.Error())
		}
		msgs = append(msgs, fmt.Sprintf("Waiting %d seconds", d))
		time.Sleep(time.Second * time.Duration(d))
	}

	msgs = append(msgs, "All OK. Selection recorded.")
	return msgs, nil
}
