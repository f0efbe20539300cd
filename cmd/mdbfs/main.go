// Command mdbfs mounts an arbitrary database as a POSIX filesystem.
// It parses --type and --db (plus a handful of backend-specific
// flags), looks the named backend up in the registry, opens the
// database artifact, and hands the backend's operation table to the
// FUSE host for the remainder of the process's life.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mdbfs/mdbfs/internal/backend"
	"github.com/mdbfs/mdbfs/internal/backends/berkeleydb"
	"github.com/mdbfs/mdbfs/internal/backends/mongodb"
	"github.com/mdbfs/mdbfs/internal/backends/postgres"
	"github.com/mdbfs/mdbfs/internal/backends/s3"
	"github.com/mdbfs/mdbfs/internal/backends/sqlite"
	"github.com/mdbfs/mdbfs/internal/credentials"
	"github.com/mdbfs/mdbfs/internal/fusehost"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

const (
	progVersion = "1.0.0"
	progHelp    = "mdbfs --type=<backend> --db=<path> <mountpoint>\n" +
		"mount the contents of a database as a filesystem\n"
)

func newRegistry() *backend.Registry {
	r := backend.NewRegistry()
	r.Add(sqlite.Name, sqlite.NewDescriptor)
	r.Add("sqlite3", sqlite.NewDescriptor)
	r.Add(postgres.Name, postgres.NewDescriptor)
	r.Add("pg", postgres.NewDescriptor)
	r.Add(berkeleydb.Name, berkeleydb.NewDescriptor)
	r.Add("bdb", berkeleydb.NewDescriptor)
	r.Add("db", berkeleydb.NewDescriptor)
	r.Add(mongodb.Name, mongodb.NewDescriptor)
	r.Add("mongo", mongodb.NewDescriptor)
	r.Add(s3.Name, s3.NewDescriptor)
	r.Add("s3fs", s3.NewDescriptor)
	return r
}

func main() {
	os.Exit(run(os.Args[1:], newRegistry()))
}

func run(args []string, registry *backend.Registry) int {
	fs := flag.NewFlagSet("mdbfs", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		typeName   = fs.String("type", "", "database backend to mount (sqlite, postgres, berkeleydb, mongodb, s3)")
		dbPath     = fs.String("db", "", "path or connection string of the database artifact to mount")
		passwdFile = fs.String("passwd-file", "", "path to an ACCESS_KEY:SECRET_KEY file (s3 backend only)")
		logFile    = fs.String("logfile", "", "optional path to a rotated diagnostic log file, in addition to stderr")
		help       bool
		version    bool
	)
	fs.BoolVar(&help, "help", false, "print this help and backend help, then exit")
	fs.BoolVar(&help, "h", false, "shorthand for --help")
	fs.BoolVar(&version, "version", false, "print version information and exit")
	fs.BoolVar(&version, "v", false, "shorthand for --version")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	if help {
		fmt.Fprint(os.Stdout, progHelp)
		fmt.Fprint(os.Stdout, "\n")
		fmt.Fprint(os.Stdout, registry.HelpText())
		fs.Usage()
		return 0
	}
	if version {
		fmt.Fprintf(os.Stdout, "mdbfs version %s\n", progVersion)
		fmt.Fprint(os.Stdout, registry.VersionText())
		return 0
	}

	if *logFile != "" {
		mlog.Default.SetLogFile(*logFile)
	}

	if *typeName == "" {
		mlog.Fail("--type is required (run --help for the list of backends)")
		return 1
	}
	desc := registry.Get(*typeName)
	if desc == nil {
		mlog.Fail("unknown backend %q", *typeName)
		return 1
	}

	if *dbPath == "" {
		mlog.Fail("--db is required")
		return 2
	}

	if *passwdFile != "" {
		if desc.Name != s3.Name {
			mlog.Fail("--passwd-file is only meaningful for the s3 backend")
			return 1
		}
		creds := credentials.NewCredentials()
		if err := creds.LoadFromPasswdFile(*passwdFile); err != nil {
			mlog.Fail("reading passwd file: %v", err)
			return 2
		}
		os.Setenv("AWS_ACCESS_KEY_ID", creds.AccessKeyID)
		os.Setenv("AWS_SECRET_ACCESS_KEY", creds.SecretAccessKey)
	}

	if err := desc.Open(*dbPath); err != nil {
		mlog.Fail("opening %s backend at %q: %v", desc.Name, *dbPath, err)
		return 2
	}

	mountArgs := fs.Args()
	if len(mountArgs) < 1 {
		mlog.Fail("a mountpoint is required")
		desc.Close()
		return 2
	}
	mountpoint := mountArgs[0]

	if err := fusehost.Mount(mountpoint, desc.FS, desc.Name); err != nil {
		mlog.Fail("mount: %v", err)
		return 2
	}
	return 0
}
