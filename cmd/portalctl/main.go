package main

import "github.com/jrsteele09/admissions-portal/cmd/portalctl/cmd"

func main() {
	cmd.Execute()
}
