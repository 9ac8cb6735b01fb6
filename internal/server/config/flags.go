package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/planboard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory
//	-b string   backup directory
//	-r int      task retention, days
//	-k int      snapshots to keep
//	-s string   cron spec for periodic backups ("" disables)
//	-m string   password hash method (scrypt, pbkdf2, argon2)
//	-l string   log level
//
// Arguments are filtered through flagx.FilterArgs first so that flags owned
// by other components do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-b", "-r", "-k", "-s", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DataDir, "d", config.DataDir, "data directory")
	fs.StringVar(&config.BackupDir, "b", config.BackupDir, "backup directory")
	retentionDays := fs.Int("r", int(config.TaskRetention/(24*time.Hour)), "task retention (in days)")
	fs.IntVar(&config.BackupKeep, "k", config.BackupKeep, "number of snapshots to keep")
	fs.StringVar(&config.BackupSchedule, "s", config.BackupSchedule, "cron spec for periodic backups")
	fs.StringVar(&config.HashMethod, "m", config.HashMethod, "password hash method")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TaskRetention = time.Duration(*retentionDays) * 24 * time.Hour
}
