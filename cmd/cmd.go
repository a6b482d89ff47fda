// Package cmd defines the command-line interface for ridedash.
package cmd

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(ridesCmd)
	rootCmd.AddCommand(rideCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to config file (default ~/.ridedash/config.json)")
	pf.StringVar(&flags.dbPath, "db", "", "Path to the ride database (default ~/.ridedash/data.db)")
	pf.Float64Var(&flags.ftp, "ftp", 0, "Override the configured FTP in watts")
	pf.Float64Var(&flags.maxHR, "max-hr", 0, "Override the configured reference heart rate")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	ridesCmd.Flags().IntVarP(&flags.limit, "limit", "l", 20, "Number of rides to list")
	ridesCmd.Flags().IntVar(&flags.offset, "offset", 0, "Number of rides to skip")

	analyzeCmd.Flags().BoolVar(&flags.save, "save", false, "Store the ride and its metrics in the database")

	exportCmd.Flags().StringVarP(&flags.format, "format", "f", "txt", "Export format: txt, parquet or json")
	exportCmd.Flags().StringVarP(&flags.out, "out", "o", "", "Output path (default derived from the ride name, - for stdout)")

	serveCmd.Flags().StringVar(&flags.addr, "addr", "", "Listen address (default from config, :8080)")

	watchCmd.Flags().StringVar(&flags.schedule, "schedule", "", "Cron schedule overriding sync.schedule")
}
