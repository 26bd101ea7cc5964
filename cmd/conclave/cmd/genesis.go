package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	cmdcommon "conclave.io/conclave/cmd/conclave/common"
	"conclave.io/conclave/lib/common"
	"conclave.io/conclave/lib/common/keypair"
	"conclave.io/conclave/lib/membership"
	"conclave.io/conclave/lib/storage"
)

var (
	genesisCmd *cobra.Command

	flagMembers     cmdcommon.ListFlags
	flagMembersFile string = common.GetENVValue("CONCLAVE_MEMBERS_FILE", "")
)

func init() {
	genesisCmd = &cobra.Command{
		Use:   "genesis <owner public key>",
		Short: "initialize a new council",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			flagName, err := MakeGenesisRegistry(args[0], flagMembers, flagMembersFile, flagStorageConfigString)
			if len(flagName) != 0 || err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			fmt.Println("successfully created member registry")
		},
	}

	genesisCmd.Flags().Var(&flagMembers, "member", "add a member: <public address>")
	genesisCmd.Flags().StringVar(&flagMembersFile, "members-file", flagMembersFile, "yaml file listing the member addresses")
	genesisCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")

	rootCmd.AddCommand(genesisCmd)
}

type membersFile struct {
	Members []string `yaml:"members"`
}

//
// Create the member registry using the provided addresses
//
// The registry is written exactly once; running genesis against a storage
// that already holds a registry is an error.
//
// Returns:
//   If an error happened, returns a tuple of (string, error).
//   The string argument represents the name of the flag which errored,
//   and error is the more detailed error.
//
func MakeGenesisRegistry(ownerStr string, members []string, membersFilePath, storageURI string) (string, error) {
	if _, err := keypair.Parse(ownerStr); err != nil {
		return "<owner public key>", err
	}

	collected := append([]string{}, members...)
	if len(membersFilePath) > 0 {
		b, err := ioutil.ReadFile(membersFilePath)
		if err != nil {
			return "--members-file", err
		}

		var mf membersFile
		if err := yaml.Unmarshal(b, &mf); err != nil {
			return "--members-file", err
		}
		collected = append(collected, mf.Members...)
	}

	for _, address := range collected {
		if _, err := keypair.Parse(address); err != nil {
			return "--member", fmt.Errorf("invalid member address '%s': %v", address, err)
		}
	}

	// Use the default value
	if len(storageURI) == 0 {
		storageURI = common.GetENVValue("CONCLAVE_STORAGE", "")
		if len(storageURI) == 0 {
			if currentDirectory, err := os.Getwd(); err == nil {
				if currentDirectory, err = filepath.Abs(currentDirectory); err == nil {
					storageURI = fmt.Sprintf("file://%s/db", currentDirectory)
				}
			}
			if len(storageURI) == 0 {
				return "--storage", errors.New("failed to determine the storage path")
			}
		}
	}

	storageConfig, err := storage.NewConfigFromString(storageURI)
	if err != nil {
		return "--storage", err
	}

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		return "--storage", fmt.Errorf("failed to initialize storage: %v", err)
	}
	defer st.Close()

	registry, err := membership.NewRegistry(ownerStr, collected...)
	if err != nil {
		return "--member", err
	}

	if err := registry.Save(st); err != nil {
		return "<owner public key>", err
	}

	return "", nil
}
