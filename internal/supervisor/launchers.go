package supervisor

import (
	"os/exec"
	"path/filepath"
	"runtime"
)

// StartNode launches a Node.js script under name.
// Returns false, after logging, if node is not on PATH.
func (s *Supervisor) StartNode(name, scriptPath string, args []string, opts StartOptions) bool {
	node, err := exec.LookPath("node")
	if err != nil {
		s.logger.Printf("Failed to start %s: node not found: %v", name, err)
		return false
	}
	return s.Start(name, node, append([]string{scriptPath}, args...), opts)
}

// StartNPX launches an npm package via npx under name.
func (s *Supervisor) StartNPX(name, pkg string, args []string, opts StartOptions) bool {
	npx, err := exec.LookPath("npx")
	if err != nil {
		s.logger.Printf("Failed to start %s: npx not found: %v", name, err)
		return false
	}
	return s.Start(name, npx, append([]string{pkg}, args...), opts)
}

// StartPython launches a Python module (python -m module) under name.
// With opts.Venv set, the virtual environment's interpreter is used;
// otherwise the interpreter is resolved from PATH.
func (s *Supervisor) StartPython(name, module string, args []string, opts StartOptions) bool {
	python, err := resolvePython(opts.Venv)
	if err != nil {
		s.logger.Printf("Failed to start %s: %v", name, err)
		return false
	}
	return s.Start(name, python, append([]string{"-m", module}, args...), opts)
}

// resolvePython picks the interpreter for a Python child: the venv's
// interpreter when a venv is given, else python3 or python from PATH.
func resolvePython(venv string) (string, error) {
	if venv != "" {
		if runtime.GOOS == "windows" {
			return filepath.Join(venv, "Scripts", "python.exe"), nil
		}
		return filepath.Join(venv, "bin", "python"), nil
	}
	if python, err := exec.LookPath("python3"); err == nil {
		return python, nil
	}
	return exec.LookPath("python")
}
