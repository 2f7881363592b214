package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/ValentinKolb/restkv/cmd/util"
	"github.com/ValentinKolb/restkv/lib/lockmgr"
	"github.com/ValentinKolb/restkv/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcLockMgr     lockmgr.ILockManager
	acquireTimeout uint64
	acquireWait    time.Duration
	acquirePoll    = 100 * time.Millisecond

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:               "lock",
		Short:             "Perform lock operations",
		PersistentPreRunE: setupLockClient,
	}

	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [key]",
		Short: "Acquire a lock",
		Long: util.WrapString(`Acquire a lock and print the owner ID needed to release it.
With --wait the lock is polled until it becomes free or the wait time is over.`),
		Args:  cobra.ExactArgs(1),
		RunE:  runAcquire,
	}

	// releaseCmd represents the release command
	releaseCmd = &cobra.Command{
		Use:   "release [key] [ownerID]",
		Short: "Release a previously acquired lock",
		Long:  "Release a lock using the key and owner ID. The owner ID is the hex string returned by the acquire command.",
		Args:  cobra.ExactArgs(2),
		RunE:  runRelease,
	}
)

func init() {
	// Add subcommands to lock command
	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(releaseCmd)

	// Add connection flags to the lock command
	util.SetupClientFlags(LockCommands)

	// Add flags specific to acquire
	acquireCmd.Flags().Uint64Var(&acquireTimeout, "timeout", 30, "Lock timeout in seconds (0 for no timeout)")
	acquireCmd.Flags().DurationVar(&acquireWait, "wait", 0, util.WrapString("How long to wait for a held lock (e.g. 5s, 0 to fail at once)"))
}

// setupLockClient initializes the lock manager client
func setupLockClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	c, err := util.NewClient()
	if err != nil {
		return err
	}

	// Create the lock manager client
	rpcLockMgr = client.NewRPCLockMgr(c)
	return nil
}

// runAcquire handles the acquire lock command
func runAcquire(cmd *cobra.Command, args []string) error {
	key := args[0]

	acquired, ownerID, err := acquire(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !acquired {
		fmt.Printf("acquired=false\n")
		return nil
	}

	fmt.Printf("acquired=true, ownerId=%s\n", ownerID)
	return nil
}

// acquire tries to acquire the lock until it succeeds or acquireWait is over
func acquire(ctx context.Context, key string) (bool, string, error) {
	if acquireWait <= 0 {
		return rpcLockMgr.AcquireLock(ctx, key, acquireTimeout)
	}

	deadline := time.After(acquireWait)

	ticker := time.NewTicker(acquirePoll)
	defer ticker.Stop()

	for {
		acquired, ownerID, err := rpcLockMgr.AcquireLock(ctx, key, acquireTimeout)
		if err != nil || acquired {
			return acquired, ownerID, err
		}

		select {
		case <-ctx.Done():
			return false, "", ctx.Err()
		case <-deadline:
			return false, "", nil
		case <-ticker.C:
		}
	}
}

// runRelease handles the release lock command
func runRelease(cmd *cobra.Command, args []string) error {
	key := args[0]
	ownerID := args[1]

	// Attempt to release the lock
	released, err := rpcLockMgr.ReleaseLock(cmd.Context(), key, ownerID)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	fmt.Printf("released=%v\n", released)
	return nil
}
