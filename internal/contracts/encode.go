package contracts

import (
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// EncodeEvent builds the topics and data of an event log. args follow the ABI
// input order; indexed ones become topics.
func EncodeEvent(parsed abi.ABI, name string, args ...interface{}) ([]common.Hash, []byte, error) {
	event, ok := parsed.Events[name]
	if !ok {
		return nil, nil, errors.Errorf("no event %s", name)
	}
	if len(args) != len(event.Inputs) {
		return nil, nil, errors.Errorf("%s takes %d args, got %d", name, len(event.Inputs), len(args))
	}

	var indexed [][]interface{}
	var plain []interface{}
	for i, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, []interface{}{args[i]})
			continue
		}
		plain = append(plain, args[i])
	}

	topics := []common.Hash{event.ID}
	if len(indexed) > 0 {
		rules, err := abi.MakeTopics(indexed...)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "topics %s", name)
		}
		for _, rule := range rules {
			topics = append(topics, rule[0])
		}
	}

	data, err := event.Inputs.NonIndexed().Pack(plain...)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "pack %s", name)
	}
	return topics, data, nil
}
