package verifier

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

const idRegistryABI = `[{"type":"function","name":"custodyOf","stateMutability":"view","inputs":[{"name":"fid","type":"uint256"}],"outputs":[{"name":"custody","type":"address"}]}]`

// CustodyReader resolves the address currently holding a fid.
type CustodyReader interface {
	CustodyOf(ctx context.Context, fid int64) (common.Address, error)
}

type contractCaller interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
}

type idRegistry struct {
	contract contractCaller
}

func NewIDRegistry(address string, caller bind.ContractCaller) (CustodyReader, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid id registry address %q", address)
	}
	parsed, err := abi.JSON(strings.NewReader(idRegistryABI))
	if err != nil {
		return nil, err
	}
	return &idRegistry{
		contract: bind.NewBoundContract(common.HexToAddress(address), parsed, caller, nil, nil),
	}, nil
}

func (r *idRegistry) CustodyOf(ctx context.Context, fid int64) (common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "custodyOf", big.NewInt(fid)); err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("custodyOf: unexpected result length %d", len(out))
	}
	custody, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("custodyOf: unexpected result type %T", out[0])
	}
	return custody, nil
}
