package testdata

import (
	"github.com/libsv/go-p2p/chaincfg/chainhash"
)

var (
	Block1        = "0000000000000000072be13e375ffd673b1f37b0ec5ecde7b7e15b01f5685d07"
	Block1Hash, _ = chainhash.NewHashFromStr(Block1)
	Block2        = "000000000000020441ac25b0a9a1339ed75ff183a2500508eb8a5e035aeaca39"
	Block2Hash, _ = chainhash.NewHashFromStr(Block2)

	TX1        = "1a8fda8c35b8fc30885e88d6eb0214e2b3a74c96c82c386cb463905446011fdf"
	TX1Hash, _ = chainhash.NewHashFromStr(TX1)

	TX2        = "3f63399b3d9d94ba9c5b7398b9328dcccfcfd50f07ad8b214e766168c391642b"
	TX2Hash, _ = chainhash.NewHashFromStr(TX2)

	TX3        = "88eab41a8d0b7b4bc395f8f988ea3d6e63c8bc339526fd2f00cb7ce6fd7df0f7"
	TX3Hash, _ = chainhash.NewHashFromStr(TX3)

	TX4        = "df931ab7d4ff0bbf96ff186f221c466f09c052c5331733641040defabf9dcd93"
	TX4Hash, _ = chainhash.NewHashFromStr(TX4)
)
