package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/patel-jhanvi/amrap-gym/internal/user"
	"github.com/patel-jhanvi/amrap-gym/internal/viewmodel"
)

type userFlags struct {
	name  string
	email string
	dob   string
	goal  string
}

func (f *userFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.dob, "dob", "", "date of birth, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.goal, "goal", "", "fitness goal")
}

func (f *userFlags) apply(cmd *cobra.Command, req user.UserRequest) user.UserRequest {
	if cmd.Flags().Changed("name") {
		req.Name = f.name
	}
	if cmd.Flags().Changed("email") {
		req.Email = f.email
	}
	if cmd.Flags().Changed("dob") {
		req.DateOfBirth = f.dob
	}
	if cmd.Flags().Changed("goal") {
		req.FitnessGoal = f.goal
	}
	return req
}

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "List and edit users",
	}
	cmd.AddCommand(a.usersListCmd(), a.usersShowCmd(), a.usersCreateCmd(), a.usersUpdateCmd(), a.usersDeleteCmd())
	return cmd
}

func (a *app) usersListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users with their gym count and member-since date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.vm.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(a.out, "ID", "NAME", "EMAIL", "GYMS", "MEMBER SINCE")
			for _, u := range viewmodel.FilterUsers(snap.Users(), search) {
				t.row(u.ID, u.Name, u.Email, strconv.Itoa(len(snap.GymsOf(u.ID))), snap.MemberSince(u.ID).String())
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "only users whose name or email contains this text")
	return cmd
}

func (a *app) usersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user's profile, gyms and the gyms they could join",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.vm.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			u, ok := snap.User(args[0])
			if !ok {
				return fmt.Errorf("user %s not found", args[0])
			}

			fmt.Fprintf(a.out, "Name:          %s\n", u.Name)
			fmt.Fprintf(a.out, "Email:         %s\n", u.Email)
			fmt.Fprintf(a.out, "Date of birth: %s\n", u.DateOfBirth)
			if u.FitnessGoal != "" {
				fmt.Fprintf(a.out, "Fitness goal:  %s\n", u.FitnessGoal)
			}
			fmt.Fprintf(a.out, "Member since:  %s\n", snap.MemberSince(u.ID))

			fmt.Fprintln(a.out, "\nGyms:")
			edges := snap.GymsOf(u.ID)
			if len(edges) == 0 {
				fmt.Fprintln(a.out, "  none")
			} else {
				t := newTable(a.out, "  ID", "NAME", "JOINED")
				for _, e := range edges {
					t.row("  "+e.Gym.ID, e.Gym.Name, dateText(e.JoinDate))
				}
				if err := t.flush(); err != nil {
					return err
				}
			}

			fmt.Fprintln(a.out, "\nCan join:")
			candidates := snap.CandidateGyms(u.ID)
			if len(candidates) == 0 {
				fmt.Fprintln(a.out, "  none")
				return nil
			}
			t := newTable(a.out, "  ID", "NAME", "SPOTS LEFT")
			for _, c := range candidates {
				spots := c.Spots.String()
				if c.Disabled {
					spots += " (unavailable)"
				}
				t.row("  "+c.Gym.ID, c.Gym.Name, spots)
			}
			return t.flush()
		},
	}
}

func (a *app) usersCreateCmd() *cobra.Command {
	var (
		f     userFlags
		gymID string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user, optionally with a first gym",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.vm.CreateUser(cmd.Context(), f.apply(cmd, user.UserRequest{}), gymID)
			if u == nil {
				return err
			}
			return a.settle(err, fmt.Sprintf("Created user %s (%s)", u.Name, u.ID))
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&gymID, "gym", "", "gym to join right away")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("dob")
	return cmd
}

func (a *app) usersUpdateCmd() *cobra.Command {
	var f userFlags
	cmd := &cobra.Command{
		Use:   "update <user-id>",
		Short: "Change a user's details; unset flags keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.client.GetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			req := f.apply(cmd, user.UserRequest{
				Name:        current.Name,
				Email:       current.Email,
				DateOfBirth: current.DateOfBirth,
				FitnessGoal: current.FitnessGoal,
			})
			u, err := a.client.UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated user %s (%s)\n", u.Name, u.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user without memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.settle(a.vm.DeleteUser(cmd.Context(), args[0]), fmt.Sprintf("Deleted user %s", args[0]))
		},
	}
}
