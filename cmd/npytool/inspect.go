package main

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/born-ml/npyio"
)

type arrayInfo struct {
	Path         string `json:"path"`
	Descr        string `json:"descr"`
	DType        string `json:"dtype,omitempty"`
	Shape        []int  `json:"shape"`
	FortranOrder bool   `json:"fortran_order"`
	Elements     int    `json:"elements"`
	ByteSize     int    `json:"byte_size"`
}

func inspectCmd() *cli.Command {
	var (
		filePath string
		asJSON   bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the header metadata of an .npy file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .npy file",
				Destination: &filePath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "json", Usage: "emit machine-readable JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			arr, err := npyio.Load(filePath)
			if err != nil {
				return err
			}
			defer arr.Release()

			info := arrayInfo{
				Path:         filePath,
				Descr:        fmt.Sprintf("%c%d", arr.TypeCode(), arr.WordSize()),
				Shape:        append([]int{}, arr.Shape()...),
				FortranOrder: arr.FortranOrder(),
				Elements:     arr.NumElements(),
				ByteSize:     arr.NumBytes(),
			}
			if dtype, err := arr.DType(); err == nil {
				info.DType = dtype.String()
			}

			if asJSON {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal info: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("file:          %s\n", info.Path)
			fmt.Printf("descr:         %s\n", info.Descr)
			if info.DType != "" {
				fmt.Printf("dtype:         %s\n", info.DType)
			} else {
				fmt.Printf("dtype:         (no host mapping)\n")
			}
			fmt.Printf("shape:         %v\n", info.Shape)
			fmt.Printf("fortran_order: %v\n", info.FortranOrder)
			fmt.Printf("elements:      %d\n", info.Elements)
			fmt.Printf("bytes:         %d\n", info.ByteSize)
			return nil
		},
	}
}
