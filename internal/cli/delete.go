package cli

import (
	"github.com/spf13/cobra"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

func newDeleteCmd() *cobra.Command {
	return newMethodCmd(oshttp.MethodDelete,
		"Make a DELETE request to the specified URL",
		`  oneshot delete https://api.example.com/users/1
  oneshot delete https://api.example.com/users -j '{"ids":[1,2]}'`)
}
