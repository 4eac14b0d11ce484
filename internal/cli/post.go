package cli

import (
	"github.com/spf13/cobra"

	oshttp "github.com/wesleyorama2/oneshot/http"
)

func newPostCmd() *cobra.Command {
	return newMethodCmd(oshttp.MethodPost,
		"Make a POST request to the specified URL",
		`  oneshot post https://api.example.com/users -j '{"name":"Ada"}'
  oneshot post https://api.example.com/upload -d @payload.bin -c application/octet-stream`)
}
