package state

import (
	"fmt"

	"github.com/gruntwork-io/fpack/spec"
)

type NotProvisionedError struct {
	InstallDir string
}

func (err NotProvisionedError) Error() string {
	return fmt.Sprintf("%s holds no provisioned installation", err.InstallDir)
}

type ConfigNotProvisionedError struct {
	Config spec.ConfigID
}

func (err ConfigNotProvisionedError) Error() string {
	return fmt.Sprintf("config %s is not provisioned", err.Config)
}
