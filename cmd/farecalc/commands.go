package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"farecalc/internal/messages"
	"farecalc/internal/modules/fare"
	"farecalc/internal/modules/pricing"
	"farecalc/internal/service"
)

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, eng *service.Engine, appName string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "calc":
		return runCalc(ctx, eng, rest, out)
	case "config":
		return runConfig(ctx, eng, appName, rest, out)
	case "profiles":
		return runProfiles(ctx, eng, rest, out)
	case "select":
		if len(rest) != 1 {
			return errUsage
		}
		st, err := eng.Profiles.Apply(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "active profile: %s\n", st.Profile)
		printProfile(out, st.FareProfile)
		return nil
	case "history":
		return runHistory(ctx, eng, rest, out)
	case "clear":
		if err := eng.History.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "history cleared")
		return nil
	default:
		return errUsage
	}
}

// settingsFlags registers the raw tariff flags on fs.
func settingsFlags(fs *flag.FlagSet) *pricing.SettingsInput {
	in := &pricing.SettingsInput{}
	fs.StringVar(&in.BaseFare, "base", "", "base fare")
	fs.StringVar(&in.MinFare, "min", "", "minimum fare")
	fs.StringVar(&in.CostPerKm, "km", "", "cost per km")
	fs.StringVar(&in.CostPerMin, "minute", "", "cost per minute")
	return in
}

func anySet(in pricing.SettingsInput) bool {
	return in.BaseFare != "" || in.MinFare != "" || in.CostPerKm != "" || in.CostPerMin != ""
}

func runCalc(ctx context.Context, eng *service.Engine, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("calc", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	from := fs.String("from", "", "origin address")
	to := fs.String("to", "", "destination address")
	profileName := fs.String("profile", "", "profile to price with")
	in := settingsFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	settings := *in
	switch {
	case anySet(settings):
	case *profileName != "":
		p, err := eng.Profiles.Select(ctx, *profileName)
		if err != nil {
			return err
		}
		settings = pricing.InputFromProfile(p)
	default:
		st, err := eng.Profiles.Active(ctx)
		if err != nil {
			return err
		}
		settings = pricing.InputFromProfile(st.FareProfile)
	}

	q, err := eng.Fare.Calculate(ctx, fare.RouteRequest{Origin: *from, Destination: *to, Session: "cli"}, settings)
	if err != nil {
		return err
	}

	m := q.Metrics.Rounded()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "origin\t%s\n", q.Origin.DisplayName)
	fmt.Fprintf(w, "destination\t%s\n", q.Destination.DisplayName)
	fmt.Fprintf(w, "distance\t%.2f km\n", m.DistanceKm)
	fmt.Fprintf(w, "duration\t%.2f min\n", m.DurationMin)
	fmt.Fprintf(w, "profile\t%s\n", q.Profile)
	fmt.Fprintf(w, "base\t%.2f\n", q.Fare.Breakdown.Base)
	fmt.Fprintf(w, "distance cost\t%.2f\n", q.Fare.Breakdown.Distance)
	fmt.Fprintf(w, "time cost\t%.2f\n", q.Fare.Breakdown.Time)
	if q.Fare.Breakdown.FloorApplied {
		fmt.Fprintf(w, "minimum fare applied\t%.2f\n", q.Settings.MinFare)
	}
	fmt.Fprintf(w, "total\t%.2f\n", q.Fare.Total)
	return w.Flush()
}

func runConfig(ctx context.Context, eng *service.Engine, appName string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	in := settingsFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if anySet(*in) {
		st, err := eng.Profiles.SaveSettings(ctx, *in)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, messages.Format(appName, messages.ConfigSaved))
		printProfile(out, st.FareProfile)
		return nil
	}

	st, err := eng.Profiles.Active(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "active profile: %s\n", st.Profile)
	printProfile(out, st.FareProfile)
	return nil
}

func runProfiles(ctx context.Context, eng *service.Engine, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	save := fs.String("save", "", "store the given values under this profile name")
	in := settingsFlags(fs)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if *save != "" {
		p, err := eng.Profiles.SaveProfile(ctx, *save, *in)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "profile %s saved\n", *save)
		printProfile(out, p)
		return nil
	}

	all, err := eng.Profiles.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBASE\tMIN\tPER KM\tPER MIN")
	for _, name := range names {
		p := all[name]
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", name, p.BaseFare, p.MinFare, p.CostPerKm, p.CostPerMin)
	}
	return w.Flush()
}

func runHistory(ctx context.Context, eng *service.Engine, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	asJSON := fs.Bool("json", false, "print entries as JSON")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	entries, err := eng.History.List(ctx)
	if err != nil {
		return err
	}
	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "no rides recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tORIGIN\tDESTINATION\tKM\tMIN\tTOTAL\tPROFILE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.Origin, e.Destination, e.DistanceKm, e.DurationMin, e.Total, e.Profile)
	}
	return w.Flush()
}

func printProfile(out io.Writer, p pricing.FareProfile) {
	fmt.Fprintf(out, "  base fare:    %.2f\n", p.BaseFare)
	fmt.Fprintf(out, "  minimum fare: %.2f\n", p.MinFare)
	fmt.Fprintf(out, "  per km:       %.2f\n", p.CostPerKm)
	fmt.Fprintf(out, "  per minute:   %.2f\n", p.CostPerMin)
}
