package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/daveroberts0321/politecode/generator"
	"github.com/daveroberts0321/politecode/project"
	"github.com/daveroberts0321/politecode/watch"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the command named by args and returns the exit code. Deferred
// cleanup such as flushing the logger runs before the process exits.
func run(args []string) int {
	if len(args) < 2 {
		printUsage()
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := args[1]

	switch cmd {
	case "init":
		if len(args) < 3 {
			fmt.Println("Usage: politecode init <project-name>")
			return 0
		}
		projectName := args[2]
		if err := project.Init(projectName); err != nil {
			return failed("Error initializing project: %v", err)
		}
		fmt.Printf("Project '%s' initialized successfully!\n", projectName)
		fmt.Printf("   cd %s\n", projectName)
		fmt.Printf("   politecode serve\n")

	case "translate":
		if len(args) < 3 {
			fmt.Println("Usage: politecode translate <file.polite> [output.cs]")
			return 0
		}
		out := ""
		if len(args) > 3 {
			out = args[3]
		}
		p, log, err := load()
		if err != nil {
			return failed("%v", err)
		}
		defer log.Sync()
		if !translate(p, args[2], out) {
			return 1
		}

	case "build":
		p, log, err := load()
		if err != nil {
			return failed("%v", err)
		}
		defer log.Sync()
		if err := p.Build(); err != nil {
			return failed("Error building project: %v", err)
		}
		fmt.Println("Project built successfully!")

	case "watch":
		p, log, err := load()
		if err != nil {
			return failed("%v", err)
		}
		defer log.Sync()
		fmt.Println("Watching for file changes...")
		if err := watch.Watch(ctx, p.SourceDirs(), log, p.Build); err != nil {
			return failed("Error watching files: %v", err)
		}

	case "serve":
		p, log, err := load()
		if err != nil {
			return failed("%v", err)
		}
		defer log.Sync()
		if err := project.StartDevServer(ctx, p); err != nil {
			return failed("Error starting dev server: %v", err)
		}

	case "gen":
		if len(args) < 3 {
			fmt.Println("Usage: politecode gen <function|program|openapi> [args...]")
			return 0
		}
		subCmd := args[2]
		switch subCmd {
		case "function":
			if len(args) < 4 {
				fmt.Println("Usage: politecode gen function <name> [type]")
				return 0
			}
			returnType := ""
			if len(args) > 4 {
				returnType = args[4]
			}
			p, log, err := load()
			if err != nil {
				return failed("%v", err)
			}
			defer log.Sync()
			if _, err := generator.GenerateFunction(p.SourceDirs()[0], args[3], returnType); err != nil {
				return failed("Error generating function: %v", err)
			}
		case "program":
			if len(args) < 4 {
				fmt.Println("Usage: politecode gen program <name>")
				return 0
			}
			p, log, err := load()
			if err != nil {
				return failed("%v", err)
			}
			defer log.Sync()
			if _, err := generator.GenerateProgram(p.SourceDirs()[0], args[3]); err != nil {
				return failed("Error generating program: %v", err)
			}
		case "openapi":
			path := "openapi.yaml"
			if len(args) > 3 {
				path = args[3]
			}
			if err := generator.GenerateOpenAPI(path, project.Version); err != nil {
				return failed("Error generating OpenAPI: %v", err)
			}
		default:
			fmt.Printf("Unknown gen command: %s\n", subCmd)
		}

	case "templates":
		if len(args) > 2 {
			tpl, err := project.LookupTemplate(args[2])
			if err != nil {
				return failed("Error: %v", err)
			}
			fmt.Print(tpl.Source)
			return 0
		}
		all, err := project.Templates()
		if err != nil {
			return failed("Error listing templates: %v", err)
		}
		for _, tpl := range all {
			fmt.Println(tpl.Name)
		}

	case "version":
		fmt.Printf("PoliteCode v%s - polite English phrases translated to C#\n", project.Version)

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
	}
	return 0
}

// load reads the project in the working directory.
func load() (*project.Project, *zap.SugaredLogger, error) {
	cfg, err := project.LoadConfig(".")
	if err != nil {
		return nil, nil, errors.Wrap(err, "Error loading config")
	}
	log, err := project.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, errors.Wrap(err, "Error creating logger")
	}
	return project.New(".", cfg, log, nil), log, nil
}

// translate converts one file and prints its diagnostics. The C# goes to out,
// or to stdout when out is empty.
func translate(p *project.Project, file, out string) bool {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", file, err)
		return false
	}

	tr := p.Translate(string(src), p.Config.Options())
	if !tr.OK {
		fmt.Printf("Translation of %s failed:\n", file)
		fmt.Print(project.Excerpts(string(src), tr.Diagnostics))
		return false
	}

	if out == "" {
		fmt.Print(tr.Code)
		return true
	}
	if err := os.WriteFile(out, []byte(tr.Code), 0644); err != nil {
		fmt.Printf("Error writing %s: %v\n", out, err)
		return false
	}
	fmt.Printf("Translated %s to %s\n", file, out)
	return true
}

// failed prints the message and returns the failure exit code.
func failed(format string, args ...interface{}) int {
	fmt.Printf(format+"\n", args...)
	return 1
}

func printUsage() {
	fmt.Println(`PoliteCode - polite English phrases translated to C#

USAGE:
    politecode <command> [arguments]

COMMANDS:
    init <name>                 Initialize a new PoliteCode project
    translate <file> [out]      Translate one .polite file to C#
    build                       Translate every source file of the project
    watch                       Watch source files and rebuild on changes
    serve                       Start the development server with hot reload
    gen function <name> [type]  Append a function template to the sources
    gen program <name>          Generate a program with a main entry point
    gen openapi [file]          Write the dev server OpenAPI spec
    templates [name]            List the bundled examples or print one
    version                     Show version information
    help                        Show this help message

EXAMPLES:
    politecode init calculator
    politecode translate src/hello.polite Hello.cs
    politecode gen function average decimal
    politecode templates factorial
    politecode serve`)
}
