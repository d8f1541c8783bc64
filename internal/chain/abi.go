package chain

// SparkUp contract ABI. Read path is totalIdeas/getIdea; the five write
// functions mirror the page actions. refund takes the contributor address
// explicitly.
const sparkUpABI = `[
	{
		"inputs": [],
		"name": "totalIdeas",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "getIdea",
		"outputs": [
			{"name": "title", "type": "string"},
			{"name": "description", "type": "string"},
			{"name": "owner", "type": "address"},
			{"name": "fundGoal", "type": "uint256"},
			{"name": "deadline", "type": "uint256"},
			{"name": "amountCollected", "type": "uint256"},
			{"name": "completed", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_title", "type": "string"},
			{"name": "_description", "type": "string"},
			{"name": "_fundGoal", "type": "uint256"},
			{"name": "_deadline", "type": "uint256"}
		],
		"name": "createIdea",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "fundIdea",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "withdraw",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "_id", "type": "uint256"}],
		"name": "completeIdea",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "_id", "type": "uint256"},
			{"name": "_contributor", "type": "address"}
		],
		"name": "refund",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`
