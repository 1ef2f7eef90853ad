package cmd

import "fmt"

type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintf(ctx.Out, "jobspy %s\n", ctx.Version)
	return err
}
