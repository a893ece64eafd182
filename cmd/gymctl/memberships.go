package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) membershipsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "memberships",
		Aliases: []string{"membership", "m"},
		Short:   "List, add, remove and move memberships",
	}
	cmd.AddCommand(a.membershipsListCmd(), a.membershipsAddCmd(), a.membershipsRemoveCmd(), a.membershipsMoveCmd())
	return cmd
}

func (a *app) membershipsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every membership by user then gym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.vm.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(a.out, "USER", "EMAIL", "GYM", "JOINED")
			for _, m := range snap.Memberships() {
				t.row(m.User.Name, m.User.Email, m.Gym.Name, dateText(m.JoinDate))
			}
			return t.flush()
		},
	}
}

func (a *app) membershipsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <user-id> <gym-id>",
		Short: "Add a user to a gym",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.vm.LoadAll(cmd.Context()); err != nil {
				return err
			}
			_, err := a.vm.AddEdge(cmd.Context(), args[0], args[1])
			return a.settle(err, fmt.Sprintf("Added user %s to gym %s", args[0], args[1]))
		},
	}
}

func (a *app) membershipsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user-id> <gym-id>",
		Short: "Remove a user from a gym",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.vm.RemoveEdge(cmd.Context(), args[0], args[1])
			return a.settle(err, fmt.Sprintf("Removed user %s from gym %s", args[0], args[1]))
		},
	}
}

func (a *app) membershipsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <user-id> <from-gym-id> <to-gym-id>",
		Short: "Move a user between gyms (remove, then add; not atomic)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.vm.LoadAll(cmd.Context()); err != nil {
				return err
			}
			err := a.vm.MoveEdge(cmd.Context(), args[0], args[1], args[2])
			return a.settle(err, fmt.Sprintf("Moved user %s from gym %s to gym %s", args[0], args[1], args[2]))
		},
	}
}
