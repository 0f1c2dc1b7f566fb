package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/client"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/grpc"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

const usage = `Usage: launcherctl [-addr URL] <command> [args]

Commands:
  list                         list managed apps
  get <id>                     show one app
  add [-safe] <path>           add the binary at an absolute path
  remove <id>                  drop one reference
  activate <id>                launch an app
  modify <id> [-name N] [-path P] [-safe=true|false]
  health [-grpc ADDR]          check the launcher
`

func main() {
	addr := flag.String("addr", envOr("LAUNCHER_ADDR", "http://localhost:8000"), "Launcher base URL")
	timeout := flag.Duration("timeout", 15*time.Second, "Request timeout")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out, err := run(ctx, client.New(*addr), flag.Arg(0), flag.Args()[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	printJSON(out)
}

func run(ctx context.Context, cl *client.Client, cmd string, args []string) (any, error) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)

	switch cmd {
	case "list":
		return cl.List(ctx)

	case "get":
		appID, err := oneArg(fs, args)
		if err != nil {
			return nil, err
		}
		return cl.Get(ctx, appID)

	case "add":
		safe := fs.Bool("safe", false, "Allow safe drive access")
		path, err := oneArg(fs, args)
		if err != nil {
			return nil, err
		}
		return cl.Add(ctx, string(path), *safe)

	case "remove":
		appID, err := oneArg(fs, args)
		if err != nil {
			return nil, err
		}
		return cl.Remove(ctx, appID)

	case "activate":
		appID, err := oneArg(fs, args)
		if err != nil {
			return nil, err
		}
		return cl.Activate(ctx, appID)

	case "modify":
		name := fs.String("name", "", "New display name")
		path := fs.String("path", "", "New local path")
		safe := fs.String("safe", "", "Safe drive access (true or false)")
		if len(args) == 0 {
			return nil, fmt.Errorf("modify needs an app id")
		}
		appID := types.AppIdentity(args[0])
		if err := fs.Parse(args[1:]); err != nil {
			return nil, err
		}

		var req types.ModifyAppRequest
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				req.Name = name
			case "path":
				req.LocalPath = path
			}
		})
		if *safe != "" {
			v := *safe == "true"
			if !v && *safe != "false" {
				return nil, fmt.Errorf("-safe must be true or false")
			}
			req.SafeDriveAccess = &v
		}
		return cl.Modify(ctx, appID, req)

	case "health":
		grpcAddr := fs.String("grpc", "", "Check the gRPC health service at this address instead")
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if *grpcAddr != "" {
			status, err := grpc.Check(ctx, *grpcAddr)
			if err != nil {
				return nil, err
			}
			return map[string]string{"status": status.String()}, nil
		}
		return cl.Health(ctx)

	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}

func oneArg(fs *flag.FlagSet, args []string) (types.AppIdentity, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s needs exactly one argument", fs.Name())
	}
	return types.AppIdentity(fs.Arg(0)), nil
}

func printJSON(v any) {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
