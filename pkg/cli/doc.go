/*
Package cli provides command-line interface utilities for the ceres
command.

Output Formatting:

Commands support text, JSON, and CSV output. CSV is available for results
implementing the Tabular interface:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
*/
package cli
