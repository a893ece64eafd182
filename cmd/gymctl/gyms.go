package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/patel-jhanvi/amrap-gym/internal/gym"
	"github.com/patel-jhanvi/amrap-gym/internal/viewmodel"
)

type gymFlags struct {
	name     string
	kind     string
	location string
	capacity int
}

func (f *gymFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "gym name")
	cmd.Flags().StringVar(&f.kind, "type", "", "gym type, e.g. crossfit")
	cmd.Flags().StringVar(&f.location, "location", "", "gym location")
	cmd.Flags().IntVar(&f.capacity, "capacity", -1, "maximum members; negative means unlimited")
}

// apply copies the flags the operator set onto req.
func (f *gymFlags) apply(cmd *cobra.Command, req gym.GymRequest) gym.GymRequest {
	if cmd.Flags().Changed("name") {
		req.Name = f.name
	}
	if cmd.Flags().Changed("type") {
		req.Type = f.kind
	}
	if cmd.Flags().Changed("location") {
		loc := f.location
		req.Location = &loc
	}
	if cmd.Flags().Changed("capacity") {
		req.MaxCapacity = nil
		if f.capacity >= 0 {
			c := f.capacity
			req.MaxCapacity = &c
		}
	}
	return req
}

func (a *app) gymsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gyms",
		Aliases: []string{"gym"},
		Short:   "List and edit gyms",
	}
	cmd.AddCommand(a.gymsListCmd(), a.gymsShowCmd(), a.gymsCreateCmd(), a.gymsUpdateCmd(), a.gymsDeleteCmd())
	return cmd
}

func (a *app) gymsListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List gyms with member counts and spots left",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.vm.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(a.out, "ID", "NAME", "TYPE", "LOCATION", "CAPACITY", "MEMBERS", "SPOTS LEFT")
			for _, g := range viewmodel.FilterGyms(snap.Gyms(), search) {
				t.row(g.ID, g.Name, g.Type, orDash(g.Location), capacityText(g),
					strconv.Itoa(snap.CurrentMembers(g.ID)), snap.SpotsLeft(g.ID).String())
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only gyms whose name contains this text")
	return cmd
}

func (a *app) gymsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <gym-id>",
		Short: "Show a gym's details and its members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.vm.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			g, ok := snap.Gym(args[0])
			if !ok {
				return fmt.Errorf("gym %s not found", args[0])
			}

			fmt.Fprintf(a.out, "Name:       %s\n", g.Name)
			fmt.Fprintf(a.out, "Type:       %s\n", g.Type)
			fmt.Fprintf(a.out, "Location:   %s\n", orDash(g.Location))
			fmt.Fprintf(a.out, "Capacity:   %s\n", capacityText(g))
			fmt.Fprintf(a.out, "Members:    %d\n", snap.CurrentMembers(g.ID))
			fmt.Fprintf(a.out, "Spots left: %s\n", snap.SpotsLeft(g.ID))
			fmt.Fprintf(a.out, "As of:      %s\n", snap.LoadedAt().Format("2006-01-02 15:04:05"))

			fmt.Fprintln(a.out, "\nMembers:")
			members := snap.MembersOf(g.ID)
			if len(members) == 0 {
				fmt.Fprintln(a.out, "  none")
				return nil
			}
			t := newTable(a.out, "  ID", "NAME", "EMAIL", "JOINED")
			for _, m := range members {
				t.row("  "+m.User.ID, m.User.Name, m.User.Email, dateText(m.JoinDate))
			}
			return t.flush()
		},
	}
}

func (a *app) gymsCreateCmd() *cobra.Command {
	var f gymFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a gym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.client.CreateGym(cmd.Context(), f.apply(cmd, gym.GymRequest{}))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created gym %s (%s)\n", g.Name, g.ID)
			return nil
		},
	}
	f.register(cmd)
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *app) gymsUpdateCmd() *cobra.Command {
	var f gymFlags
	cmd := &cobra.Command{
		Use:   "update <gym-id>",
		Short: "Change a gym's details; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.client.GetGym(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := f.apply(cmd, gym.GymRequest{
				Name:        current.Name,
				Type:        current.Type,
				Location:    current.Location,
				MaxCapacity: current.MaxCapacity,
			})
			g, err := a.client.UpdateGym(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated gym %s (%s)\n", g.Name, g.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) gymsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <gym-id>",
		Short: "Delete a gym without members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := a.vm.DeleteGym(cmd.Context(), args[0])
			if outcome == viewmodel.DeletedLocally {
				return fmt.Errorf("gym %s was not deleted: the store refused although it has no members", args[0])
			}
			return a.settle(err, fmt.Sprintf("Deleted gym %s", args[0]))
		},
	}
}
