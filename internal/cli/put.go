package cli

import (
	"github.com/spf13/cobra"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

func newPutCmd() *cobra.Command {
	return newMethodCmd(oshttp.MethodPut,
		"Make a PUT request to the specified URL",
		`  oneshot put https://api.example.com/users/1 -j '{"name":"Ada"}'`)
}
