/*
Package cli provides command-line helpers for the formgate command.

The cli package includes output formatters, progress reporters, signal handling and
the error types commands return.

Output Formatting:

Results that implement Tabular render as text, an aligned table, or CSV; any value
renders as JSON:

	format, err := cli.ParseOutputFormat(flag, cli.FormatTable, cli.FormatJSON)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, result)

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "Linting", "files")
	progress.Start(int64(len(files)))
	for i, f := range files {
		lint(f)
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
